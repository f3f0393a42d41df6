package binwatch

import (
	"context"

	"platter/internal/binning"
	"platter/internal/catalog"
)

// Catalog is the read surface the trigger functions need. Both
// *catalog.Store and *catalog.Tx satisfy it, so triggers can read the same
// uncommitted state their mutation just wrote.
type Catalog interface {
	GetZoneByID(ctx context.Context, id int64) (*catalog.StorageZone, error)
	AffectedArtistIDs(ctx context.Context, artistID int64) ([]int64, error)
	ItemsForArtists(ctx context.Context, artistIDs []int64) ([]*catalog.MediaItem, error)
}

// ItemSaved records the scopes touched by an item create or update. Old and
// new snapshots cover the reclassification case: when the effective zone or
// bucket changed, both the departed scope and the arrival scope must be
// recomputed. Either snapshot may be nil.
func ItemSaved(ctx context.Context, q Catalog, rec *Recorder, oldSnap, newSnap *ItemSnapshot) error {
	if err := recordSnapshot(ctx, q, rec, oldSnap, "MediaItem saved"); err != nil {
		return err
	}
	return recordSnapshot(ctx, q, rec, newSnap, "MediaItem saved")
}

// ItemDeleted records the deleted item's former scope so the remaining items
// can shift into the freed capacity.
func ItemDeleted(ctx context.Context, q Catalog, rec *Recorder, snap *ItemSnapshot) error {
	return recordSnapshot(ctx, q, rec, snap, "MediaItem deleted")
}

// ArtistSaved records the scope of every item whose rank may have shifted
// because an artist's derived sort fields changed. Filed-under dependents
// get their sort fields bulk-updated without per-item writes, so the trigger
// enumerates the items of the artist and of everyone filing under it.
func ArtistSaved(ctx context.Context, q Catalog, rec *Recorder, artistID int64) error {
	artistIDs, err := q.AffectedArtistIDs(ctx, artistID)
	if err != nil {
		return err
	}
	items, err := q.ItemsForArtists(ctx, artistIDs)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := recordSnapshot(ctx, q, rec, SnapshotItem(item), "Artist saved (incl filed-under dependents)"); err != nil {
			return err
		}
	}
	return nil
}

// ZoneCapacityChanged records a whole-zone rebin. A default capacity change
// can move every bin boundary in the zone.
func ZoneCapacityChanged(rec *Recorder, zoneID int64) {
	rec.RecordZone(zoneID, "StorageZone default_bin_capacity changed")
}

// BinOverrideChanged records a whole-zone rebin for the bin's zone. One
// bin's capacity shifts the boundary of every bin after it.
func BinOverrideChanged(rec *Recorder, bin *catalog.LogicalBin) {
	rec.RecordZone(bin.ZoneID, "LogicalBin capacity_override changed")
}

func recordSnapshot(ctx context.Context, q Catalog, rec *Recorder, snap *ItemSnapshot, note string) error {
	if snap == nil {
		return nil
	}
	zone, err := q.GetZoneByID(ctx, snap.EffectiveZoneID)
	if err != nil {
		return err
	}
	if zone == nil {
		return nil
	}
	scope := binning.Scope{
		ZoneID:   zone.ID,
		BucketID: binning.NormalizeBucket(zone, snap.BucketID),
	}
	rec.RecordScope(scope, note)
	return nil
}
