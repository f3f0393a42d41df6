package seed

import (
	"context"
	"fmt"
	"log/slog"

	"platter/internal/catalog"
	"platter/internal/logging"
)

// BinsResult reports what a bin grid seeding created or confirmed.
type BinsResult struct {
	LogicalBins  int
	PhysicalBins int
	Mappings     int
}

// Bins builds a zone's bin grid: one physical bin per (shelf, position), one
// logical bin per linear number, and a 1:1 active mapping between them.
// Idempotent, so growing a zone just means re-running with larger counts.
func Bins(ctx context.Context, store *catalog.Store, logger *slog.Logger, zoneCode string, shelves, perShelf int) (BinsResult, error) {
	if shelves < 1 || perShelf < 1 {
		return BinsResult{}, fmt.Errorf("seed bins: shelves and per-shelf counts must be at least 1")
	}
	log := logging.NewComponentLogger(logger, "seed")

	var result BinsResult
	err := store.WithTx(ctx, func(tx *catalog.Tx) error {
		zone, err := tx.GetZoneByCode(ctx, zoneCode)
		if err != nil {
			return err
		}
		if zone == nil {
			return fmt.Errorf("seed bins: unknown zone %s", zoneCode)
		}

		number := 1
		for shelf := 1; shelf <= shelves; shelf++ {
			for pos := 1; pos <= perShelf; pos++ {
				physical, err := tx.UpsertPhysicalBin(ctx, &catalog.PhysicalBin{
					ZoneID:      zone.ID,
					ShelfNumber: shelf,
					BinNumber:   pos,
					IsActive:    true,
				})
				if err != nil {
					return fmt.Errorf("seed physical bin %d/%d: %w", shelf, pos, err)
				}
				result.PhysicalBins++

				logical, err := tx.UpsertLogicalBin(ctx, &catalog.LogicalBin{
					ZoneID:   zone.ID,
					Number:   number,
					IsActive: true,
				})
				if err != nil {
					return fmt.Errorf("seed logical bin %d: %w", number, err)
				}
				result.LogicalBins++

				if _, err := tx.ActivateMapping(ctx, logical.ID, physical.ID); err != nil {
					return fmt.Errorf("map bin %d: %w", number, err)
				}
				result.Mappings++
				number++
			}
		}
		return nil
	})
	if err != nil {
		return BinsResult{}, err
	}

	log.Info("seeded bin grid",
		logging.String(logging.FieldZone, zoneCode),
		logging.Int("logical_bins", result.LogicalBins),
		logging.Int("physical_bins", result.PhysicalBins),
	)
	return result, nil
}
