package api

import (
	"context"
	"fmt"
	"log/slog"

	"platter/internal/binning"
	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/services"
)

// BinningService exposes the placement engine to the CLI and HTTP daemon.
type BinningService struct {
	store   *catalog.Store
	engine  *binning.Engine
	watcher *binwatch.Watcher
	logger  *slog.Logger
}

// NewBinningService constructs a BinningService.
func NewBinningService(store *catalog.Store, engine *binning.Engine, watcher *binwatch.Watcher, logger *slog.Logger) *BinningService {
	if store == nil || engine == nil {
		return nil
	}
	return &BinningService{
		store:   store,
		engine:  engine,
		watcher: watcher,
		logger:  logging.NewComponentLogger(logger, "binning-service"),
	}
}

// AssignItem computes (and when persist is set, stores) one item's logical
// bin, returning the outcome with its explanatory reason.
func (s *BinningService) AssignItem(ctx context.Context, itemID int64, persist bool) (AssignmentOutcome, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return AssignmentOutcome{}, err
	}
	if item == nil {
		return AssignmentOutcome{}, services.Wrap(services.ErrNotFound, "binning", "assign", fmt.Sprintf("item %d not found", itemID), nil)
	}

	result, err := s.engine.AssignLogicalBin(ctx, item, persist)
	if err != nil {
		return AssignmentOutcome{}, err
	}

	outcome := AssignmentOutcome{
		ItemID:    itemID,
		Assigned:  result.Assigned(),
		Reason:    result.Reason,
		Persisted: persist && result.Assigned(),
	}
	if result.LogicalBin != nil {
		binID := result.LogicalBin.ID
		number := result.LogicalBin.Number
		outcome.BinID = &binID
		outcome.BinNumber = &number
		label, err := s.store.PhysicalLabelForLogical(ctx, binID)
		if err != nil {
			return AssignmentOutcome{}, err
		}
		outcome.PhysicalLabel = label
	}
	return outcome, nil
}

// RebinScope recomputes one scope. The bucket code may be empty for the
// bucketless scope.
func (s *BinningService) RebinScope(ctx context.Context, zoneCode, bucketCode string, recordMoves bool, notes string) (*catalog.RebinRun, error) {
	zone, err := s.lookupZone(ctx, zoneCode)
	if err != nil {
		return nil, err
	}
	var bucketID *int64
	if bucketCode != "" {
		bucket, err := s.store.GetBucketByCode(ctx, bucketCode)
		if err != nil {
			return nil, err
		}
		if bucket == nil {
			return nil, services.Wrap(services.ErrNotFound, "binning", "rebin scope", "unknown bucket "+bucketCode, nil)
		}
		bucketID = &bucket.ID
	}
	return s.engine.RebinScope(ctx, binning.ScopeRebinRequest{
		Zone:        zone,
		BucketID:    bucketID,
		RecordMoves: recordMoves,
		Notes:       notes,
	})
}

// RebinZone recomputes every scope of a zone.
func (s *BinningService) RebinZone(ctx context.Context, zoneCode string, recordMoves bool, notes string) ([]*catalog.RebinRun, error) {
	zone, err := s.lookupZone(ctx, zoneCode)
	if err != nil {
		return nil, err
	}
	return s.engine.RebinZone(ctx, zone, recordMoves, notes)
}

// RecalculatePlacement reassigns the selected items one by one, then records
// one audit run per touched scope so the resulting shifts are reviewable.
func (s *BinningService) RecalculatePlacement(ctx context.Context, itemIDs []int64) (RecalcResult, error) {
	result := RecalcResult{Selected: len(itemIDs)}
	touched := make(map[binning.ScopeKey]struct{})

	for _, id := range itemIDs {
		item, err := s.store.GetItem(ctx, id)
		if err != nil {
			return RecalcResult{}, err
		}
		if item == nil {
			continue
		}
		before := item.LogicalBinID
		assignResult, err := s.engine.AssignLogicalBin(ctx, item, true)
		if err != nil {
			return RecalcResult{}, err
		}
		if assignResult.LogicalBin != nil && (before == nil || *before != assignResult.LogicalBin.ID) {
			result.Updated++
		}

		zone, err := s.store.GetZoneByID(ctx, item.EffectiveZoneID)
		if err != nil {
			return RecalcResult{}, err
		}
		if zone != nil && zone.IsBinned {
			touched[binning.ScopeForItem(zone, item).Key()] = struct{}{}
		}
	}

	notes := fmt.Sprintf("Manual placement recalculation (selected=%d, updated=%d)", result.Selected, result.Updated)
	for key := range touched {
		scope := key.Scope()
		zone, err := s.store.GetZoneByID(ctx, scope.ZoneID)
		if err != nil {
			return RecalcResult{}, err
		}
		if zone == nil {
			continue
		}
		run, err := s.engine.RebinScope(ctx, binning.ScopeRebinRequest{
			Zone:        zone,
			BucketID:    scope.BucketID,
			RecordMoves: true,
			Notes:       notes,
		})
		if err != nil {
			return RecalcResult{}, err
		}
		if run != nil {
			result.RunIDs = append(result.RunIDs, run.ID)
		}
	}
	return result, nil
}

// ReclassifyRequest selects items and the classification change to apply.
// Nil fields leave the corresponding item field untouched.
type ReclassifyRequest struct {
	ItemIDs       []int64
	MediaTypeName string
	ZoneOverride  string
	ClearOverride bool
}

// BulkReclassify applies a media type or zone override change to many items
// in one transaction. Both the departed and arrival scopes of every item are
// rebinned after commit.
func (s *BinningService) BulkReclassify(ctx context.Context, req ReclassifyRequest) (ReclassifyResult, error) {
	if req.MediaTypeName == "" && req.ZoneOverride == "" && !req.ClearOverride {
		return ReclassifyResult{}, services.Wrap(services.ErrValidation, "binning", "reclassify", "nothing to change", nil)
	}

	var mediaTypeID *int64
	if req.MediaTypeName != "" {
		mt, err := s.store.GetMediaTypeByName(ctx, req.MediaTypeName)
		if err != nil {
			return ReclassifyResult{}, err
		}
		if mt == nil {
			return ReclassifyResult{}, services.Wrap(services.ErrNotFound, "binning", "reclassify", "unknown media type "+req.MediaTypeName, nil)
		}
		mediaTypeID = &mt.ID
	}
	var overrideZoneID *int64
	if req.ZoneOverride != "" {
		zone, err := s.lookupZone(ctx, req.ZoneOverride)
		if err != nil {
			return ReclassifyResult{}, err
		}
		overrideZoneID = &zone.ID
	}

	result := ReclassifyResult{Selected: len(req.ItemIDs)}
	rec := binwatch.NewRecorder()
	err := s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		for _, id := range req.ItemIDs {
			before, txErr := tx.GetItem(ctx, id)
			if txErr != nil {
				return txErr
			}
			if before == nil {
				continue
			}
			item := *before
			if mediaTypeID != nil {
				item.MediaTypeID = *mediaTypeID
			}
			if overrideZoneID != nil {
				item.ZoneOverrideID = overrideZoneID
			}
			if req.ClearOverride {
				item.ZoneOverrideID = nil
			}
			after, txErr := tx.UpdateItem(ctx, &item)
			if txErr != nil {
				return txErr
			}
			if txErr := binwatch.ItemSaved(ctx, tx, rec, binwatch.SnapshotItem(before), binwatch.SnapshotItem(after)); txErr != nil {
				return txErr
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return ReclassifyResult{}, err
	}
	// Post-commit runs carry a fixed description rather than the generic
	// trigger notes.
	if err := s.flushWithNotes(ctx, rec, "Bulk media type/zone override change"); err != nil {
		return ReclassifyResult{}, err
	}
	return result, nil
}

// GenerateTaskList rebins a whole zone with move recording on, producing the
// runs whose moves become the physical shuffling checklist.
func (s *BinningService) GenerateTaskList(ctx context.Context, zoneCode string) ([]*catalog.RebinRun, error) {
	return s.RebinZone(ctx, zoneCode, true, "Manual task list generation")
}

// MarkMoveDone toggles one move's checklist state.
func (s *BinningService) MarkMoveDone(ctx context.Context, moveID int64, done bool) error {
	updated, err := s.store.MarkMoveDone(ctx, moveID, done)
	if err != nil {
		return err
	}
	if !updated {
		return services.Wrap(services.ErrNotFound, "binning", "mark move", fmt.Sprintf("move %d not found", moveID), nil)
	}
	return nil
}

func (s *BinningService) lookupZone(ctx context.Context, code string) (*catalog.StorageZone, error) {
	zone, err := s.store.GetZoneByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, services.Wrap(services.ErrNotFound, "binning", "zone lookup", "unknown zone "+code, nil)
	}
	return zone, nil
}

func (s *BinningService) flushWithNotes(ctx context.Context, rec *binwatch.Recorder, notes string) error {
	if rec.Empty() {
		return nil
	}
	override := binwatch.NewRecorder()
	for _, zoneID := range rec.Zones() {
		override.RecordZone(zoneID, notes)
	}
	for _, scope := range rec.Scopes() {
		override.RecordScope(scope, notes)
	}
	return s.watcher.Flush(ctx, override)
}
