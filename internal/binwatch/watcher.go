package binwatch

import (
	"context"
	"log/slog"

	"platter/internal/binning"
	"platter/internal/catalog"
	"platter/internal/logging"
)

// Watcher executes the recomputation a recorder accumulated. Callers run
// Flush only after the writing transaction committed; on rollback the
// recorder is discarded and nothing runs.
type Watcher struct {
	store  *catalog.Store
	engine *binning.Engine
	logger *slog.Logger
}

// NewWatcher constructs a watcher over the given store and engine.
func NewWatcher(store *catalog.Store, engine *binning.Engine, logger *slog.Logger) *Watcher {
	return &Watcher{
		store:  store,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "binwatch"),
	}
}

// Flush rebins every recorded scope and zone. Whole-zone entries run first
// and absorb scoped entries for the same zone; zones that do not carry bins
// are skipped. Each scope rebin is its own transaction, so a failure in one
// scope does not undo completed sibling scopes; the error is returned after
// the remaining scopes have been attempted.
func (w *Watcher) Flush(ctx context.Context, rec *Recorder) error {
	if rec == nil || rec.Empty() {
		return nil
	}
	notes := rec.Notes()

	var firstErr error
	for _, zoneID := range rec.Zones() {
		zone, err := w.loadBinnedZone(ctx, zoneID)
		if err != nil || zone == nil {
			firstErr = firstError(firstErr, err)
			continue
		}
		if _, err := w.engine.RebinZone(ctx, zone, true, notes); err != nil {
			w.logger.Error("zone rebin failed", logging.String(logging.FieldZone, zone.Code), logging.Error(err))
			firstErr = firstError(firstErr, err)
		}
	}

	for _, scope := range rec.Scopes() {
		zone, err := w.loadBinnedZone(ctx, scope.ZoneID)
		if err != nil || zone == nil {
			firstErr = firstError(firstErr, err)
			continue
		}
		_, err = w.engine.RebinScope(ctx, binning.ScopeRebinRequest{
			Zone:        zone,
			BucketID:    scope.BucketID,
			RecordMoves: true,
			Notes:       notes,
		})
		if err != nil {
			w.logger.Error("scope rebin failed", logging.String(logging.FieldZone, zone.Code), logging.Error(err))
			firstErr = firstError(firstErr, err)
		}
	}

	return firstErr
}

func (w *Watcher) loadBinnedZone(ctx context.Context, zoneID int64) (*catalog.StorageZone, error) {
	zone, err := w.store.GetZoneByID(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil || !zone.IsBinned {
		return nil, nil
	}
	return zone, nil
}

func firstError(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
