package binning

import (
	"context"
	"fmt"
	"log/slog"

	"platter/internal/catalog"
	"platter/internal/logging"
)

// Queries is the catalog access surface the engine drives. Both
// *catalog.Store and *catalog.Tx satisfy it, so the same placement code runs
// standalone for single-item assignment and inside one transaction for a
// scope rebin.
type Queries interface {
	GetZoneByID(ctx context.Context, id int64) (*catalog.StorageZone, error)
	ListBuckets(ctx context.Context, activeOnly bool) ([]*catalog.SortBucket, error)
	ActiveBins(ctx context.Context, zoneID int64) ([]*catalog.LogicalBin, error)
	ActiveBinsInRange(ctx context.Context, zoneID int64, startBin, endBin int) ([]*catalog.LogicalBin, error)
	ActiveRange(ctx context.Context, zoneID, bucketID int64) (*catalog.BucketBinRange, error)
	ItemsInScope(ctx context.Context, zone *catalog.StorageZone, bucketID *int64) ([]*catalog.MediaItem, error)
	UpdateItemBin(ctx context.Context, itemID int64, binID *int64) error
	UpdateItemBins(ctx context.Context, assignments []catalog.BinAssignment) error
	CreateRun(ctx context.Context, zoneID, bucketID *int64, notes string) (*catalog.RebinRun, error)
	CreateMoves(ctx context.Context, moves []*catalog.RebinMove) error
	PhysicalLabelForLogical(ctx context.Context, logicalBinID int64) (string, error)
}

// AssignmentResult reports the outcome of a single-item assignment. A nil
// bin with a reason is a normal, representable outcome ("no bin available"),
// not an error.
type AssignmentResult struct {
	LogicalBin *catalog.LogicalBin
	Reason     string
}

// Assigned reports whether a bin was chosen.
func (r AssignmentResult) Assigned() bool {
	return r.LogicalBin != nil
}

// Engine computes and persists logical bin placement.
type Engine struct {
	store  *catalog.Store
	logger *slog.Logger
}

// NewEngine constructs the placement engine.
func NewEngine(store *catalog.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logging.NewComponentLogger(logger, "binning"),
	}
}

// AssignLogicalBin computes one item's logical bin from its effective zone
// rules. When persist is set and the chosen bin differs from the stored one,
// only the bin reference is written; nothing else is touched and no rebin
// cascade fires. This is the base case of placement, not the cascading case.
func (e *Engine) AssignLogicalBin(ctx context.Context, item *catalog.MediaItem, persist bool) (AssignmentResult, error) {
	if item == nil {
		return AssignmentResult{Reason: "media item is nil"}, nil
	}
	if item.ID == 0 {
		return AssignmentResult{Reason: "media item must be saved before assignment"}, nil
	}

	zone, err := e.store.GetZoneByID(ctx, item.EffectiveZoneID)
	if err != nil {
		return AssignmentResult{}, err
	}
	if zone == nil {
		return AssignmentResult{Reason: "media item has no effective zone"}, nil
	}

	bucketID := NormalizeBucket(zone, item.BucketID)
	bins, universeReason, err := binsForScope(ctx, e.store, zone, bucketID)
	if err != nil {
		return AssignmentResult{}, err
	}
	if len(bins) == 0 {
		return AssignmentResult{Reason: fmt.Sprintf("no logical bins exist for scope: %s", universeReason)}, nil
	}

	items, err := e.store.ItemsInScope(ctx, zone, bucketID)
	if err != nil {
		return AssignmentResult{}, err
	}
	SortItems(items)
	rank, _ := RankIndex(items, item)

	chosen, overflowed := chooseBinByCapacity(zone, bins, rank)

	var reason string
	switch {
	case overflowed:
		reason = fmt.Sprintf("overflow: rank %d exceeds capacity in [%s]; pinned to last bin %d", rank, universeReason, chosen.Number)
	case zone.SortStrategy == catalog.SortBucketed:
		reason = fmt.Sprintf("bucketed rank %d in scope [%s] (capacity-aware)", rank, universeReason)
	default:
		reason = fmt.Sprintf("alpha-only rank %d in zone [%s] (capacity-aware)", rank, zone.Code)
	}

	if persist {
		current := item.LogicalBinID
		if current == nil || *current != chosen.ID {
			if err := e.store.UpdateItemBin(ctx, item.ID, &chosen.ID); err != nil {
				return AssignmentResult{}, err
			}
			binID := chosen.ID
			item.LogicalBinID = &binID
			e.logger.Info("assigned logical bin",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String(logging.FieldZone, zone.Code),
				logging.Int("bin", chosen.Number),
			)
		}
	}

	return AssignmentResult{LogicalBin: chosen, Reason: reason}, nil
}

// ScopeRebinRequest describes one scope rebin invocation.
type ScopeRebinRequest struct {
	Zone        *catalog.StorageZone
	BucketID    *int64
	RecordMoves bool
	Notes       string
}

// RebinScope recomputes placement for every item in one scope. Changed items
// are persisted in one batch, and when RecordMoves is set a run with one move
// per changed item is written alongside. Everything commits atomically: a
// failure mid-scope leaves no partial reassignment.
//
// An empty scope or a scope with no eligible bins returns the (possibly nil)
// run untouched; both are no-ops, not errors.
func (e *Engine) RebinScope(ctx context.Context, req ScopeRebinRequest) (*catalog.RebinRun, error) {
	if req.Zone == nil {
		return nil, fmt.Errorf("rebin scope: zone is nil")
	}

	var run *catalog.RebinRun
	err := e.store.WithTx(ctx, func(tx *catalog.Tx) error {
		var txErr error
		run, txErr = e.rebinScopeTx(ctx, tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (e *Engine) rebinScopeTx(ctx context.Context, tx *catalog.Tx, req ScopeRebinRequest) (*catalog.RebinRun, error) {
	zone := req.Zone
	bucketID := NormalizeBucket(zone, req.BucketID)

	var run *catalog.RebinRun
	if req.RecordMoves {
		var err error
		run, err = tx.CreateRun(ctx, &zone.ID, bucketID, req.Notes)
		if err != nil {
			return nil, err
		}
	}

	items, err := tx.ItemsInScope(ctx, zone, bucketID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return run, nil
	}
	SortItems(items)

	bins, _, err := binsForScope(ctx, tx, zone, bucketID)
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return run, nil
	}

	var (
		assignments []catalog.BinAssignment
		moves       []*catalog.RebinMove
	)
	for rank, item := range items {
		chosen, _ := chooseBinByCapacity(zone, bins, rank)
		if chosen == nil {
			continue
		}
		if item.LogicalBinID != nil && *item.LogicalBinID == chosen.ID {
			continue
		}

		binID := chosen.ID
		assignments = append(assignments, catalog.BinAssignment{ItemID: item.ID, BinID: &binID})

		if req.RecordMoves && run != nil {
			oldLabel := ""
			if item.LogicalBinID != nil {
				oldLabel, err = tx.PhysicalLabelForLogical(ctx, *item.LogicalBinID)
				if err != nil {
					return nil, err
				}
			}
			newLabel, err := tx.PhysicalLabelForLogical(ctx, chosen.ID)
			if err != nil {
				return nil, err
			}
			moves = append(moves, &catalog.RebinMove{
				RunID:            run.ID,
				MediaItemID:      item.ID,
				OldLogicalBinID:  item.LogicalBinID,
				NewLogicalBinID:  &binID,
				OldPhysicalLabel: oldLabel,
				NewPhysicalLabel: newLabel,
			})
		}
	}

	if len(assignments) > 0 {
		if err := tx.UpdateItemBins(ctx, assignments); err != nil {
			return nil, err
		}
	}
	if len(moves) > 0 {
		if err := tx.CreateMoves(ctx, moves); err != nil {
			return nil, err
		}
	}

	e.logger.Info("rebinned scope",
		logging.String(logging.FieldZone, zone.Code),
		logging.Int("items", len(items)),
		logging.Int("moved", len(assignments)),
	)
	return run, nil
}

// RebinZone recomputes placement for an entire zone. A BUCKETED zone gets one
// scope rebin per active bucket plus the bucketless scope; any other zone is
// a single scope. Returned runs may contain nils when moves were not
// recorded.
func (e *Engine) RebinZone(ctx context.Context, zone *catalog.StorageZone, recordMoves bool, notes string) ([]*catalog.RebinRun, error) {
	if zone == nil {
		return nil, fmt.Errorf("rebin zone: zone is nil")
	}

	if zone.SortStrategy != catalog.SortBucketed {
		run, err := e.RebinScope(ctx, ScopeRebinRequest{Zone: zone, RecordMoves: recordMoves, Notes: notes})
		if err != nil {
			return nil, err
		}
		return []*catalog.RebinRun{run}, nil
	}

	buckets, err := e.store.ListBuckets(ctx, true)
	if err != nil {
		return nil, err
	}

	runs := make([]*catalog.RebinRun, 0, len(buckets)+1)
	for _, bucket := range buckets {
		bucketID := bucket.ID
		run, err := e.RebinScope(ctx, ScopeRebinRequest{
			Zone:        zone,
			BucketID:    &bucketID,
			RecordMoves: recordMoves,
			Notes:       notes,
		})
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	// The bucketless scope holds items with no bucket assigned; it is a
	// deliberate persistent scope in bucketed zones.
	run, err := e.RebinScope(ctx, ScopeRebinRequest{Zone: zone, RecordMoves: recordMoves, Notes: notes})
	if err != nil {
		return nil, err
	}
	runs = append(runs, run)

	return runs, nil
}
