package binning_test

import (
	"context"
	"strings"
	"testing"

	"platter/internal/binning"
	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/testsupport"
)

type fixture struct {
	store  *catalog.Store
	engine *binning.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return &fixture{
		store:  store,
		engine: binning.NewEngine(store, logging.NewNop()),
	}
}

func binByNumber(t *testing.T, store *catalog.Store, zoneID int64, number int) *catalog.LogicalBin {
	t.Helper()
	bin, err := store.GetLogicalBinByNumber(context.Background(), zoneID, number)
	if err != nil {
		t.Fatalf("GetLogicalBinByNumber %d: %v", number, err)
	}
	if bin == nil {
		t.Fatalf("logical bin %d missing", number)
	}
	return bin
}

func assignedBin(t *testing.T, store *catalog.Store, itemID int64) *int64 {
	t.Helper()
	item, err := store.GetItem(context.Background(), itemID)
	if err != nil {
		t.Fatalf("GetItem %d: %v", itemID, err)
	}
	if item == nil {
		t.Fatalf("item %d missing", itemID)
	}
	return item.LogicalBinID
}

func TestRebinScopePacksByRankAndCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	abba := testsupport.NewBand(t, f.store, "Abba")
	beatles := testsupport.NewBand(t, f.store, "The Beatles")
	cash := testsupport.NewPerson(t, f.store, "Johnny", "Cash")
	zappa := testsupport.NewPerson(t, f.store, "Frank", "Zappa")

	items := []*catalog.MediaItem{
		testsupport.NewItem(t, f.store, zappa, lp, "Hot Rats"),
		testsupport.NewItem(t, f.store, cash, lp, "At Folsom Prison"),
		testsupport.NewItem(t, f.store, beatles, lp, "Revolver"),
		testsupport.NewItem(t, f.store, abba, lp, "Arrival"),
	}

	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone}); err != nil {
		t.Fatalf("RebinScope: %v", err)
	}

	bin1 := binByNumber(t, f.store, zone.ID, 1)
	bin2 := binByNumber(t, f.store, zone.ID, 2)

	// Canonical order: Abba, Beatles (The stripped), Cash, Zappa.
	wantBins := map[int64]int64{
		items[3].ID: bin1.ID, // Abba
		items[2].ID: bin1.ID, // Beatles
		items[1].ID: bin2.ID, // Cash
		items[0].ID: bin2.ID, // Zappa
	}
	for itemID, wantBin := range wantBins {
		got := assignedBin(t, f.store, itemID)
		if got == nil || *got != wantBin {
			t.Errorf("item %d assigned %v, want bin %d", itemID, got, wantBin)
		}
	}
}

func TestRebinScopeOverflowPinsToLastBin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	names := []string{"Abba", "Beatles", "Cream", "Devo", "Eagles"}
	var last *catalog.MediaItem
	for _, name := range names {
		band := testsupport.NewBand(t, f.store, name)
		last = testsupport.NewItem(t, f.store, band, lp, name+" Debut")
	}

	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone}); err != nil {
		t.Fatalf("RebinScope: %v", err)
	}

	bin2 := binByNumber(t, f.store, zone.ID, 2)
	got := assignedBin(t, f.store, last.ID)
	if got == nil || *got != bin2.ID {
		t.Fatalf("overflow item assigned %v, want pinned to bin %d", got, bin2.ID)
	}

	loaded, err := f.store.GetItem(ctx, last.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	result, err := f.engine.AssignLogicalBin(ctx, loaded, false)
	if err != nil {
		t.Fatalf("AssignLogicalBin: %v", err)
	}
	if !strings.HasPrefix(result.Reason, "overflow:") {
		t.Fatalf("reason = %q, want overflow prefix", result.Reason)
	}
}

func TestAssignWithoutBucketRangeStaysUnassigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortBucketed, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 4)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	country := testsupport.NewBucket(t, f.store, "COUNTRY", 10)

	band := testsupport.NewBand(t, f.store, "Alabama")
	created := testsupport.NewBucketedItem(t, f.store, band, lp, country, "Mountain Music")

	item, err := f.store.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	result, err := f.engine.AssignLogicalBin(ctx, item, true)
	if err != nil {
		t.Fatalf("AssignLogicalBin: %v", err)
	}
	if result.Assigned() {
		t.Fatalf("assigned %v without a bucket bin range", result.LogicalBin)
	}
	if !strings.Contains(result.Reason, "no bucket bin range") {
		t.Fatalf("reason = %q, want missing-range diagnostic", result.Reason)
	}
	if got := assignedBin(t, f.store, created.ID); got != nil {
		t.Fatalf("item persisted bin %d despite missing range", *got)
	}
}

func TestRebinScopeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	for _, name := range []string{"Abba", "Beatles", "Cream"} {
		testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, name), lp, name+" Debut")
	}

	first, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone, RecordMoves: true})
	if err != nil {
		t.Fatalf("first RebinScope: %v", err)
	}
	firstMoves, err := f.store.ListMovesForRun(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListMovesForRun: %v", err)
	}
	if len(firstMoves) != 3 {
		t.Fatalf("first rebin recorded %d moves, want 3", len(firstMoves))
	}

	second, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone, RecordMoves: true})
	if err != nil {
		t.Fatalf("second RebinScope: %v", err)
	}
	secondMoves, err := f.store.ListMovesForRun(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListMovesForRun: %v", err)
	}
	if len(secondMoves) != 0 {
		t.Fatalf("second rebin recorded %d moves, want 0", len(secondMoves))
	}
}

func TestRebinScopeLeavesOtherScopesUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortBucketed, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 4)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	country := testsupport.NewBucket(t, f.store, "COUNTRY", 10)
	jazz := testsupport.NewBucket(t, f.store, "JAZZ", 20)

	if _, err := f.store.SetBucketRange(ctx, zone.ID, country.ID, 1, 2); err != nil {
		t.Fatalf("SetBucketRange country: %v", err)
	}
	if _, err := f.store.SetBucketRange(ctx, zone.ID, jazz.ID, 3, 4); err != nil {
		t.Fatalf("SetBucketRange jazz: %v", err)
	}

	countryItem := testsupport.NewBucketedItem(t, f.store, testsupport.NewBand(t, f.store, "Alabama"), lp, country, "Mountain Music")
	jazzItem := testsupport.NewBucketedItem(t, f.store, testsupport.NewPerson(t, f.store, "Miles", "Davis"), lp, jazz, "Kind of Blue")

	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone, BucketID: &country.ID}); err != nil {
		t.Fatalf("RebinScope country: %v", err)
	}

	if got := assignedBin(t, f.store, countryItem.ID); got == nil {
		t.Fatal("country item not assigned by its scope rebin")
	}
	if got := assignedBin(t, f.store, jazzItem.ID); got != nil {
		t.Fatalf("jazz item assigned bin %d by a country rebin", *got)
	}
}

func TestRebinScopeRespectsBucketRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortBucketed, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 4)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	jazz := testsupport.NewBucket(t, f.store, "JAZZ", 20)
	if _, err := f.store.SetBucketRange(ctx, zone.ID, jazz.ID, 3, 4); err != nil {
		t.Fatalf("SetBucketRange: %v", err)
	}

	for _, name := range []string{"Brubeck", "Coltrane", "Davis"} {
		testsupport.NewBucketedItem(t, f.store, testsupport.NewBand(t, f.store, name), lp, jazz, name+" Live")
	}

	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone, BucketID: &jazz.ID}); err != nil {
		t.Fatalf("RebinScope: %v", err)
	}

	allowed := map[int64]bool{
		binByNumber(t, f.store, zone.ID, 3).ID: true,
		binByNumber(t, f.store, zone.ID, 4).ID: true,
	}
	items, err := f.store.ListItems(ctx, catalog.ItemFilter{ZoneID: zone.ID})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, it := range items {
		if it.LogicalBinID == nil {
			t.Errorf("item %d unassigned", it.ID)
			continue
		}
		if !allowed[*it.LogicalBinID] {
			t.Errorf("item %d placed outside the bucket range", it.ID)
		}
	}
}

func TestRebinRecordsAccurateMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	testsupport.MapBins(t, f.store, zone)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	created := testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Abba"), lp, "Arrival")

	run, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone, RecordMoves: true, Notes: "fixture"})
	if err != nil {
		t.Fatalf("RebinScope: %v", err)
	}
	moves, err := f.store.ListMovesForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListMovesForRun: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("recorded %d moves, want 1", len(moves))
	}
	move := moves[0]
	if move.MediaItemID != created.ID {
		t.Errorf("move references item %d, want %d", move.MediaItemID, created.ID)
	}
	if move.OldLogicalBinID != nil || move.OldPhysicalLabel != "" {
		t.Errorf("fresh item has an old location: %v %q", move.OldLogicalBinID, move.OldPhysicalLabel)
	}
	if move.NewPhysicalLabel != "SHELF: Shelf 1 Bin 1" {
		t.Errorf("new label = %q", move.NewPhysicalLabel)
	}
	if move.IsDone {
		t.Error("new move already marked done")
	}
}

func TestCapacityChangeRepacksZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	third := testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Cream"), lp, "Disraeli Gears")
	testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Abba"), lp, "Arrival")
	testsupport.NewItem(t, f.store, testsupport.NewBand(t, f.store, "Beatles"), lp, "Revolver")

	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone}); err != nil {
		t.Fatalf("initial RebinScope: %v", err)
	}
	bin2 := binByNumber(t, f.store, zone.ID, 2)
	if got := assignedBin(t, f.store, third.ID); got == nil || *got != bin2.ID {
		t.Fatalf("rank 2 item in %v, want bin 2 at capacity 2", got)
	}

	zone.DefaultBinCapacity = 3
	if _, err := f.store.UpsertZone(ctx, zone); err != nil {
		t.Fatalf("UpsertZone: %v", err)
	}
	zone, err := f.store.GetZoneByCode(ctx, "SHELF")
	if err != nil {
		t.Fatalf("GetZoneByCode: %v", err)
	}
	if _, err := f.engine.RebinScope(ctx, binning.ScopeRebinRequest{Zone: zone}); err != nil {
		t.Fatalf("rebin after capacity change: %v", err)
	}
	bin1 := binByNumber(t, f.store, zone.ID, 1)
	if got := assignedBin(t, f.store, third.ID); got == nil || *got != bin1.ID {
		t.Fatalf("rank 2 item in %v, want bin 1 at capacity 3", got)
	}
}

func TestAssignUnsavedItem(t *testing.T) {
	f := newFixture(t)

	result, err := f.engine.AssignLogicalBin(context.Background(), &catalog.MediaItem{Title: "Loose Leaf"}, true)
	if err != nil {
		t.Fatalf("AssignLogicalBin: %v", err)
	}
	if result.Assigned() {
		t.Fatal("unsaved item received a bin")
	}
	if !strings.Contains(result.Reason, "saved before assignment") {
		t.Fatalf("reason = %q", result.Reason)
	}
}
