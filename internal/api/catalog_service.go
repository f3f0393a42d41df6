package api

import (
	"context"
	"log/slog"

	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/services"
)

// CatalogService performs catalog mutations with the snapshot and
// post-commit rebin protocol. Every write captures the scope-determining
// state before and after the change inside one transaction, then flushes the
// recorded scopes only once the transaction has committed.
type CatalogService struct {
	store   *catalog.Store
	watcher *binwatch.Watcher
	logger  *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(store *catalog.Store, watcher *binwatch.Watcher, logger *slog.Logger) *CatalogService {
	if store == nil || watcher == nil {
		return nil
	}
	return &CatalogService{
		store:   store,
		watcher: watcher,
		logger:  logging.NewComponentLogger(logger, "catalog-service"),
	}
}

// SaveArtist creates or updates an artist, propagates derived sort fields to
// filed-under dependents, and rebins every scope holding an affected item.
func (s *CatalogService) SaveArtist(ctx context.Context, artist *catalog.Artist) (*catalog.Artist, error) {
	if artist == nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "save artist", "artist is nil", nil)
	}
	rec := binwatch.NewRecorder()
	var saved *catalog.Artist
	err := s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		var txErr error
		saved, txErr = tx.SaveArtist(ctx, artist)
		if txErr != nil {
			return txErr
		}
		return binwatch.ArtistSaved(ctx, tx, rec, saved.ID)
	})
	if err != nil {
		return nil, err
	}
	if err := s.watcher.Flush(ctx, rec); err != nil {
		return nil, err
	}
	return saved, nil
}

// CreateItem inserts an item and rebins its arrival scope.
func (s *CatalogService) CreateItem(ctx context.Context, item *catalog.MediaItem) (*catalog.MediaItem, error) {
	if item == nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "create item", "item is nil", nil)
	}
	rec := binwatch.NewRecorder()
	var created *catalog.MediaItem
	err := s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		var txErr error
		created, txErr = tx.CreateItem(ctx, item)
		if txErr != nil {
			return txErr
		}
		return binwatch.ItemSaved(ctx, tx, rec, nil, binwatch.SnapshotItem(created))
	})
	if err != nil {
		return nil, err
	}
	if err := s.watcher.Flush(ctx, rec); err != nil {
		return nil, err
	}
	return s.store.GetItem(ctx, created.ID)
}

// UpdateItem persists user-editable item fields and rebins both the departed
// and the arrival scope when classification changed.
func (s *CatalogService) UpdateItem(ctx context.Context, item *catalog.MediaItem) (*catalog.MediaItem, error) {
	if item == nil || item.ID == 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "update item", "item has no id", nil)
	}
	rec := binwatch.NewRecorder()
	var updated *catalog.MediaItem
	err := s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		before, txErr := tx.GetItem(ctx, item.ID)
		if txErr != nil {
			return txErr
		}
		if before == nil {
			return services.Wrap(services.ErrNotFound, "catalog", "update item", "item not found", nil)
		}
		updated, txErr = tx.UpdateItem(ctx, item)
		if txErr != nil {
			return txErr
		}
		return binwatch.ItemSaved(ctx, tx, rec, binwatch.SnapshotItem(before), binwatch.SnapshotItem(updated))
	})
	if err != nil {
		return nil, err
	}
	if err := s.watcher.Flush(ctx, rec); err != nil {
		return nil, err
	}
	return s.store.GetItem(ctx, updated.ID)
}

// DeleteItem removes an item and rebins its former scope so the remaining
// items shift into the freed capacity.
func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	rec := binwatch.NewRecorder()
	err := s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		before, txErr := tx.GetItem(ctx, id)
		if txErr != nil {
			return txErr
		}
		if before == nil {
			return services.Wrap(services.ErrNotFound, "catalog", "delete item", "item not found", nil)
		}
		if _, txErr = tx.DeleteItem(ctx, id); txErr != nil {
			return txErr
		}
		return binwatch.ItemDeleted(ctx, tx, rec, binwatch.SnapshotItem(before))
	})
	if err != nil {
		return err
	}
	return s.watcher.Flush(ctx, rec)
}

// SetZoneCapacity updates a zone's default bin capacity and rebins the whole
// zone, since every bin boundary may have shifted.
func (s *CatalogService) SetZoneCapacity(ctx context.Context, zoneCode string, capacity int) error {
	if capacity < 1 {
		return services.Wrap(services.ErrValidation, "catalog", "set zone capacity", "capacity must be at least 1", nil)
	}
	zone, err := s.store.GetZoneByCode(ctx, zoneCode)
	if err != nil {
		return err
	}
	if zone == nil {
		return services.Wrap(services.ErrNotFound, "catalog", "set zone capacity", "unknown zone "+zoneCode, nil)
	}
	if zone.DefaultBinCapacity == capacity {
		return nil
	}
	rec := binwatch.NewRecorder()
	err = s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		if txErr := tx.SetZoneDefaultCapacity(ctx, zone.ID, capacity); txErr != nil {
			return txErr
		}
		binwatch.ZoneCapacityChanged(rec, zone.ID)
		return nil
	})
	if err != nil {
		return err
	}
	return s.watcher.Flush(ctx, rec)
}

// SetBinOverride sets or clears one logical bin's capacity override and
// rebins the bin's zone.
func (s *CatalogService) SetBinOverride(ctx context.Context, zoneCode string, binNumber int, override *int) error {
	if override != nil && *override < 1 {
		return services.Wrap(services.ErrValidation, "catalog", "set bin override", "override must be at least 1", nil)
	}
	zone, err := s.store.GetZoneByCode(ctx, zoneCode)
	if err != nil {
		return err
	}
	if zone == nil {
		return services.Wrap(services.ErrNotFound, "catalog", "set bin override", "unknown zone "+zoneCode, nil)
	}
	bin, err := s.store.GetLogicalBinByNumber(ctx, zone.ID, binNumber)
	if err != nil {
		return err
	}
	if bin == nil {
		return services.Wrap(services.ErrNotFound, "catalog", "set bin override", "unknown bin", nil)
	}
	if intPtrEqual(bin.CapacityOverride, override) {
		return nil
	}
	rec := binwatch.NewRecorder()
	err = s.store.WithTx(ctx, func(tx *catalog.Tx) error {
		if txErr := tx.SetBinCapacityOverride(ctx, bin.ID, override); txErr != nil {
			return txErr
		}
		binwatch.BinOverrideChanged(rec, bin)
		return nil
	})
	if err != nil {
		return err
	}
	return s.watcher.Flush(ctx, rec)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ActivateMapping points a logical bin at a physical bin. Placement itself
// is unaffected (labels are resolved at read time), so no rebin fires.
func (s *CatalogService) ActivateMapping(ctx context.Context, logicalBinID, physicalBinID int64) (*catalog.BinMapping, error) {
	mapping, err := s.store.ActivateMapping(ctx, logicalBinID, physicalBinID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("activated bin mapping",
		logging.Int64("logical_bin_id", logicalBinID),
		logging.Int64("physical_bin_id", physicalBinID),
	)
	return mapping, nil
}
