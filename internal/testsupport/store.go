package testsupport

import (
	"context"
	"testing"

	"platter/internal/catalog"
	"platter/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewZone upserts a storage zone for tests.
func NewZone(t testing.TB, store *catalog.Store, code string, strategy catalog.SortStrategy, binned bool, capacity, perShelf int) *catalog.StorageZone {
	t.Helper()

	zone, err := store.UpsertZone(context.Background(), &catalog.StorageZone{
		Code:               code,
		Name:               code,
		IsBinned:           binned,
		SortStrategy:       strategy,
		DefaultBinCapacity: capacity,
		BinsPerShelf:       perShelf,
	})
	if err != nil {
		t.Fatalf("UpsertZone %s: %v", code, err)
	}
	return zone
}

// NewBins upserts active logical bins numbered 1..count in the zone.
func NewBins(t testing.TB, store *catalog.Store, zoneID int64, count int) []*catalog.LogicalBin {
	t.Helper()

	bins := make([]*catalog.LogicalBin, 0, count)
	for number := 1; number <= count; number++ {
		bin, err := store.UpsertLogicalBin(context.Background(), &catalog.LogicalBin{
			ZoneID:   zoneID,
			Number:   number,
			IsActive: true,
		})
		if err != nil {
			t.Fatalf("UpsertLogicalBin %d: %v", number, err)
		}
		bins = append(bins, bin)
	}
	return bins
}

// MapBins gives every active logical bin in the zone a physical location,
// laid out shelf by shelf according to the zone's bins-per-shelf.
func MapBins(t testing.TB, store *catalog.Store, zone *catalog.StorageZone) {
	t.Helper()

	ctx := context.Background()
	bins, err := store.ActiveBins(ctx, zone.ID)
	if err != nil {
		t.Fatalf("ActiveBins: %v", err)
	}
	perShelf := zone.BinsPerShelf
	if perShelf <= 0 {
		perShelf = 8
	}
	for _, bin := range bins {
		shelf := (bin.Number-1)/perShelf + 1
		position := (bin.Number-1)%perShelf + 1
		physical, err := store.UpsertPhysicalBin(ctx, &catalog.PhysicalBin{
			ZoneID:      zone.ID,
			ShelfNumber: shelf,
			BinNumber:   position,
			IsActive:    true,
		})
		if err != nil {
			t.Fatalf("UpsertPhysicalBin shelf %d bin %d: %v", shelf, position, err)
		}
		if _, err := store.ActivateMapping(ctx, bin.ID, physical.ID); err != nil {
			t.Fatalf("ActivateMapping bin %d: %v", bin.Number, err)
		}
	}
}

// NewBucket upserts an active sort bucket for tests.
func NewBucket(t testing.TB, store *catalog.Store, code string, order int) *catalog.SortBucket {
	t.Helper()

	bucket, err := store.UpsertBucket(context.Background(), &catalog.SortBucket{
		Code:      code,
		Name:      code,
		SortOrder: order,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("UpsertBucket %s: %v", code, err)
	}
	return bucket
}

// NewMediaType upserts a media type whose default zone is the given zone.
func NewMediaType(t testing.TB, store *catalog.Store, name string, zoneID int64) *catalog.MediaType {
	t.Helper()

	mt, err := store.UpsertMediaType(context.Background(), &catalog.MediaType{
		Name:          name,
		DefaultZoneID: zoneID,
		IsVinyl:       true,
	})
	if err != nil {
		t.Fatalf("UpsertMediaType %s: %v", name, err)
	}
	return mt
}

// NewBand creates a band artist for tests.
func NewBand(t testing.TB, store *catalog.Store, name string) *catalog.Artist {
	t.Helper()

	artist, err := store.SaveArtist(context.Background(), &catalog.Artist{
		Kind:        catalog.ArtistBand,
		NamePrimary: name,
	})
	if err != nil {
		t.Fatalf("SaveArtist %s: %v", name, err)
	}
	return artist
}

// NewPerson creates a person artist for tests.
func NewPerson(t testing.TB, store *catalog.Store, first, last string) *catalog.Artist {
	t.Helper()

	artist, err := store.SaveArtist(context.Background(), &catalog.Artist{
		Kind:          catalog.ArtistPerson,
		NamePrimary:   first,
		NameSecondary: last,
	})
	if err != nil {
		t.Fatalf("SaveArtist %s %s: %v", first, last, err)
	}
	return artist
}

// NewItem creates a media item with sensible defaults for tests.
func NewItem(t testing.TB, store *catalog.Store, artist *catalog.Artist, mediaType *catalog.MediaType, title string) *catalog.MediaItem {
	t.Helper()

	item, err := store.CreateItem(context.Background(), &catalog.MediaItem{
		ArtistID:    artist.ID,
		Title:       title,
		MediaTypeID: mediaType.ID,
		Owner:       catalog.OwnerMe,
	})
	if err != nil {
		t.Fatalf("CreateItem %s: %v", title, err)
	}
	return item
}

// NewBucketedItem creates a media item classified into the given bucket.
func NewBucketedItem(t testing.TB, store *catalog.Store, artist *catalog.Artist, mediaType *catalog.MediaType, bucket *catalog.SortBucket, title string) *catalog.MediaItem {
	t.Helper()

	item, err := store.CreateItem(context.Background(), &catalog.MediaItem{
		ArtistID:    artist.ID,
		Title:       title,
		MediaTypeID: mediaType.ID,
		Owner:       catalog.OwnerMe,
		BucketID:    &bucket.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem %s: %v", title, err)
	}
	return item
}
