package binwatch_test

import (
	"context"
	"testing"

	"platter/internal/binning"
	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/testsupport"
)

type watchFixture struct {
	store   *catalog.Store
	watcher *binwatch.Watcher
}

func newWatchFixture(t *testing.T) *watchFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := binning.NewEngine(store, logging.NewNop())
	return &watchFixture{
		store:   store,
		watcher: binwatch.NewWatcher(store, engine, logging.NewNop()),
	}
}

func TestItemSavedTriggerRecordsBothScopes(t *testing.T) {
	f := newWatchFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortBucketed, true, 2, 8)
	country := testsupport.NewBucket(t, f.store, "COUNTRY", 10)
	jazz := testsupport.NewBucket(t, f.store, "JAZZ", 20)

	rec := binwatch.NewRecorder()
	oldSnap := &binwatch.ItemSnapshot{ItemID: 1, EffectiveZoneID: zone.ID, BucketID: &country.ID}
	newSnap := &binwatch.ItemSnapshot{ItemID: 1, EffectiveZoneID: zone.ID, BucketID: &jazz.ID}
	if err := binwatch.ItemSaved(ctx, f.store, rec, oldSnap, newSnap); err != nil {
		t.Fatalf("ItemSaved: %v", err)
	}

	scopes := rec.Scopes()
	if len(scopes) != 2 {
		t.Fatalf("reclassification recorded %d scopes, want departed and arrival", len(scopes))
	}
}

func TestItemSavedTriggerNormalizesBucketInAlphaZone(t *testing.T) {
	f := newWatchFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "OFFICE", catalog.SortAlphaOnly, true, 2, 8)
	country := testsupport.NewBucket(t, f.store, "COUNTRY", 10)

	rec := binwatch.NewRecorder()
	snap := &binwatch.ItemSnapshot{ItemID: 1, EffectiveZoneID: zone.ID, BucketID: &country.ID}
	if err := binwatch.ItemSaved(ctx, f.store, rec, nil, snap); err != nil {
		t.Fatalf("ItemSaved: %v", err)
	}

	scopes := rec.Scopes()
	if len(scopes) != 1 || scopes[0].BucketID != nil {
		t.Fatalf("alpha-only zone scope = %v, want bucket normalized away", scopes)
	}
}

func TestArtistSavedTriggerCoversFiledUnderDependents(t *testing.T) {
	f := newWatchFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	paul := testsupport.NewPerson(t, f.store, "Paul", "McCartney")
	wings, err := f.store.SaveArtist(ctx, &catalog.Artist{
		Kind:         catalog.ArtistBand,
		NamePrimary:  "Wings",
		FiledUnderID: &paul.ID,
	})
	if err != nil {
		t.Fatalf("SaveArtist: %v", err)
	}
	testsupport.NewItem(t, f.store, wings, lp, "Band on the Run")

	rec := binwatch.NewRecorder()
	if err := binwatch.ArtistSaved(ctx, f.store, rec, paul.ID); err != nil {
		t.Fatalf("ArtistSaved: %v", err)
	}
	scopes := rec.Scopes()
	if len(scopes) != 1 || scopes[0].ZoneID != zone.ID {
		t.Fatalf("dependent's item scope not recorded: %v", scopes)
	}
}

func TestFlushRebinsRecordedScopes(t *testing.T) {
	f := newWatchFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	item := testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Abba"), lp, "Arrival")

	rec := binwatch.NewRecorder()
	if err := binwatch.ItemSaved(ctx, f.store, rec, nil, binwatch.SnapshotItem(item)); err != nil {
		t.Fatalf("ItemSaved: %v", err)
	}
	if err := f.watcher.Flush(ctx, rec); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded, err := f.store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if reloaded.LogicalBinID == nil {
		t.Fatal("flush did not assign the new item a bin")
	}

	run, err := f.store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run == nil {
		t.Fatal("flush did not record a run")
	}
	if run.Notes != "MediaItem saved" {
		t.Fatalf("run notes = %q", run.Notes)
	}
}

func TestFlushSkipsNonBinnedZones(t *testing.T) {
	f := newWatchFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "TURNTABLE", catalog.SortAlphaOnly, false, 2, 8)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	item := testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Abba"), lp, "Arrival")

	rec := binwatch.NewRecorder()
	if err := binwatch.ItemSaved(ctx, f.store, rec, nil, binwatch.SnapshotItem(item)); err != nil {
		t.Fatalf("ItemSaved: %v", err)
	}
	if err := f.watcher.Flush(ctx, rec); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	run, err := f.store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run != nil {
		t.Fatalf("non-binned zone produced run %s", run.ID)
	}
}

func TestFlushNilAndEmptyRecorder(t *testing.T) {
	f := newWatchFixture(t)
	if err := f.watcher.Flush(context.Background(), nil); err != nil {
		t.Fatalf("nil recorder: %v", err)
	}
	if err := f.watcher.Flush(context.Background(), binwatch.NewRecorder()); err != nil {
		t.Fatalf("empty recorder: %v", err)
	}
}
