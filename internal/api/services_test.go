package api_test

import (
	"context"
	"errors"
	"testing"

	"platter/internal/api"
	"platter/internal/binning"
	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/logging"
	"platter/internal/services"
	"platter/internal/testsupport"
)

type serviceFixture struct {
	store   *catalog.Store
	catalog *api.CatalogService
	binning *api.BinningService
	reports *api.ReportService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	engine := binning.NewEngine(store, logger)
	watcher := binwatch.NewWatcher(store, engine, logger)
	return &serviceFixture{
		store:   store,
		catalog: api.NewCatalogService(store, watcher, logger),
		binning: api.NewBinningService(store, engine, watcher, logger),
		reports: api.NewReportService(store, logger),
	}
}

func (f *serviceFixture) binOf(t *testing.T, itemID int64) *int64 {
	t.Helper()
	item, err := f.store.GetItem(context.Background(), itemID)
	if err != nil {
		t.Fatalf("GetItem %d: %v", itemID, err)
	}
	if item == nil {
		t.Fatalf("item %d missing", itemID)
	}
	return item.LogicalBinID
}

func TestCreateItemAssignsPlacementAfterCommit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, f.store, "Abba")

	created, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    band.ID,
		Title:       "Arrival",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if got := f.binOf(t, created.ID); got == nil {
		t.Fatal("created item was not placed")
	}
}

func TestUpdateItemBucketChangeRebinsBothScopes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortBucketed, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 4)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	country := testsupport.NewBucket(t, f.store, "COUNTRY", 10)
	jazz := testsupport.NewBucket(t, f.store, "JAZZ", 20)
	if _, err := f.store.SetBucketRange(ctx, zone.ID, country.ID, 1, 2); err != nil {
		t.Fatalf("SetBucketRange: %v", err)
	}
	if _, err := f.store.SetBucketRange(ctx, zone.ID, jazz.ID, 3, 4); err != nil {
		t.Fatalf("SetBucketRange: %v", err)
	}

	band := testsupport.NewBand(t, f.store, "Alabama")
	mover, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    band.ID,
		Title:       "Mountain Music",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
		BucketID:    &country.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	stayer, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    band.ID,
		Title:       "Roll On",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
		BucketID:    &country.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	countryBins := map[int64]bool{}
	for _, n := range []int{1, 2} {
		bin, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, n)
		if err != nil || bin == nil {
			t.Fatalf("bin %d: %v", n, err)
		}
		countryBins[bin.ID] = true
	}

	mover.BucketID = &jazz.ID
	if _, err := f.catalog.UpdateItem(ctx, mover); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	moverBin := f.binOf(t, mover.ID)
	if moverBin == nil || countryBins[*moverBin] {
		t.Fatalf("reclassified item bin = %v, want a jazz-range bin", moverBin)
	}
	stayerBin := f.binOf(t, stayer.ID)
	if stayerBin == nil || !countryBins[*stayerBin] {
		t.Fatalf("remaining item bin = %v, want a country-range bin", stayerBin)
	}
}

func TestDeleteItemCompactsScope(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 1, 8)
	testsupport.NewBins(t, f.store, zone.ID, 3)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	var itemIDs []int64
	for _, name := range []string{"Abba", "Beatles", "Cream"} {
		band := testsupport.NewBand(t, f.store, name)
		created, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
			ArtistID:    band.ID,
			Title:       name + " Debut",
			MediaTypeID: lp.ID,
			Owner:       catalog.OwnerMe,
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		itemIDs = append(itemIDs, created.ID)
	}

	// Capacity one per bin: ranks map 1:1 onto bins 1..3.
	if err := f.catalog.DeleteItem(ctx, itemIDs[0]); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	bin1, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, 1)
	if err != nil {
		t.Fatalf("bin 1: %v", err)
	}
	if got := f.binOf(t, itemIDs[1]); got == nil || *got != bin1.ID {
		t.Fatalf("surviving first item in %v, want shifted into bin 1", got)
	}
}

func TestSetZoneCapacityRepacks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	var third *catalog.MediaItem
	for _, name := range []string{"Abba", "Beatles", "Cream"} {
		band := testsupport.NewBand(t, f.store, name)
		created, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
			ArtistID:    band.ID,
			Title:       name + " Debut",
			MediaTypeID: lp.ID,
			Owner:       catalog.OwnerMe,
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		third = created
	}

	bin2, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, 2)
	if err != nil {
		t.Fatalf("bin 2: %v", err)
	}
	if got := f.binOf(t, third.ID); got == nil || *got != bin2.ID {
		t.Fatalf("rank 2 item in %v before capacity change, want bin 2", got)
	}

	if err := f.catalog.SetZoneCapacity(ctx, "SHELF", 3); err != nil {
		t.Fatalf("SetZoneCapacity: %v", err)
	}

	bin1, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, 1)
	if err != nil {
		t.Fatalf("bin 1: %v", err)
	}
	if got := f.binOf(t, third.ID); got == nil || *got != bin1.ID {
		t.Fatalf("rank 2 item in %v after capacity 3, want bin 1", got)
	}

	if err := f.catalog.SetZoneCapacity(ctx, "SHELF", 0); err == nil {
		t.Error("capacity 0 was accepted")
	}
	if err := f.catalog.SetZoneCapacity(ctx, "NOWHERE", 2); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown zone error = %v, want not-found", err)
	}
}

func TestSetBinOverrideRepacks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	var third *catalog.MediaItem
	for _, name := range []string{"Abba", "Beatles", "Cream"} {
		band := testsupport.NewBand(t, f.store, name)
		created, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
			ArtistID:    band.ID,
			Title:       name + " Debut",
			MediaTypeID: lp.ID,
			Owner:       catalog.OwnerMe,
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		third = created
	}

	override := 1
	if err := f.catalog.SetBinOverride(ctx, "SHELF", 1, &override); err != nil {
		t.Fatalf("SetBinOverride: %v", err)
	}

	// Bin 1 now holds one item; ranks 1 and 2 land in bin 2.
	bin2, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, 2)
	if err != nil {
		t.Fatalf("bin 2: %v", err)
	}
	if got := f.binOf(t, third.ID); got == nil || *got != bin2.ID {
		t.Fatalf("rank 2 item in %v after override, want bin 2", got)
	}

	zero := 0
	if err := f.catalog.SetBinOverride(ctx, "SHELF", 1, &zero); !errors.Is(err, services.ErrValidation) {
		t.Errorf("override 0 error = %v, want validation", err)
	}

	// Saving the value already in place must not fire a zone rebin.
	runsBefore, err := f.store.ListRuns(ctx, 50)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if err := f.catalog.SetBinOverride(ctx, "SHELF", 1, &override); err != nil {
		t.Fatalf("SetBinOverride unchanged: %v", err)
	}
	runsAfter, err := f.store.ListRuns(ctx, 50)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runsAfter) != len(runsBefore) {
		t.Fatalf("unchanged override recorded %d new run(s)", len(runsAfter)-len(runsBefore))
	}
}

func TestSaveArtistRefileMovesItems(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 1, 8)
	testsupport.NewBins(t, f.store, zone.ID, 3)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)

	paul := testsupport.NewPerson(t, f.store, "Paul", "McCartney")
	wings := testsupport.NewBand(t, f.store, "Wings")
	abba := testsupport.NewBand(t, f.store, "Abba")

	wingsItem, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    wings.ID,
		Title:       "Band on the Run",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    abba.ID,
		Title:       "Arrival",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
	}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	// Alphabetically Wings files after Abba: capacity one puts it in bin 2.
	bin2, err := f.store.GetLogicalBinByNumber(ctx, zone.ID, 2)
	if err != nil {
		t.Fatalf("bin 2: %v", err)
	}
	if got := f.binOf(t, wingsItem.ID); got == nil || *got != bin2.ID {
		t.Fatalf("wings item in %v, want bin 2", got)
	}

	// Refiling Wings under McCartney changes its sort key; still after Abba,
	// so the placement holds, but the save must run through the trigger so
	// the scope recomputes with the new ranks.
	wings.FiledUnderID = &paul.ID
	if _, err := f.catalog.SaveArtist(ctx, wings); err != nil {
		t.Fatalf("SaveArtist refile: %v", err)
	}
	if got := f.binOf(t, wingsItem.ID); got == nil || *got != bin2.ID {
		t.Fatalf("wings item in %v after refile, want bin 2 (McCartney files after Abba)", got)
	}

	reloaded, err := f.store.GetArtist(ctx, wings.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if reloaded.SortName != "Mccartney, Paul" {
		t.Fatalf("refiled SortName = %q", reloaded.SortName)
	}
}

func TestAssignItemOutcome(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 1)
	testsupport.MapBins(t, f.store, zone)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, f.store, "Abba")
	item := testsupport.NewItem(t, f.store, band, lp, "Arrival")

	outcome, err := f.binning.AssignItem(ctx, item.ID, false)
	if err != nil {
		t.Fatalf("AssignItem dry: %v", err)
	}
	if !outcome.Assigned || outcome.Persisted {
		t.Fatalf("dry outcome = %+v", outcome)
	}
	if got := f.binOf(t, item.ID); got != nil {
		t.Fatal("dry run persisted a bin")
	}

	outcome, err = f.binning.AssignItem(ctx, item.ID, true)
	if err != nil {
		t.Fatalf("AssignItem persist: %v", err)
	}
	if !outcome.Persisted {
		t.Fatalf("persisted outcome = %+v", outcome)
	}
	if outcome.PhysicalLabel != "SHELF: Shelf 1 Bin 1" {
		t.Fatalf("physical label = %q", outcome.PhysicalLabel)
	}

	if _, err := f.binning.AssignItem(ctx, 9999, false); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing item error = %v", err)
	}
}

func TestRecalculatePlacementRecordsRuns(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, f.store, "Abba")
	a := testsupport.NewItem(t, f.store, band, lp, "Arrival")
	b := testsupport.NewItem(t, f.store, band, lp, "Waterloo")

	result, err := f.binning.RecalculatePlacement(ctx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("RecalculatePlacement: %v", err)
	}
	if result.Selected != 2 || result.Updated != 2 {
		t.Fatalf("result = %+v, want both items updated", result)
	}
	if len(result.RunIDs) != 1 {
		t.Fatalf("runs = %v, want one run for the single touched scope", result.RunIDs)
	}
}

func TestBulkReclassifyMovesAcrossZones(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	garage := testsupport.NewZone(t, f.store, "GARAGE", catalog.SortAlphaOnly, true, 2, 8)
	office := testsupport.NewZone(t, f.store, "OFFICE", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, garage.ID, 2)
	testsupport.NewBins(t, f.store, office.ID, 2)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", garage.ID)
	testsupport.NewMediaType(t, f.store, "Premium Pressings", office.ID)

	band := testsupport.NewBand(t, f.store, "Abba")
	item, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
		ArtistID:    band.ID,
		Title:       "Arrival",
		MediaTypeID: lp.ID,
		Owner:       catalog.OwnerMe,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	result, err := f.binning.BulkReclassify(ctx, api.ReclassifyRequest{
		ItemIDs:       []int64{item.ID},
		MediaTypeName: "Premium Pressings",
	})
	if err != nil {
		t.Fatalf("BulkReclassify: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("result = %+v", result)
	}

	moved, err := f.store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if moved.EffectiveZoneID != office.ID {
		t.Fatalf("EffectiveZoneID = %d, want %d", moved.EffectiveZoneID, office.ID)
	}
	officeBin, err := f.store.GetLogicalBinByNumber(ctx, office.ID, 1)
	if err != nil {
		t.Fatalf("office bin: %v", err)
	}
	if moved.LogicalBinID == nil || *moved.LogicalBinID != officeBin.ID {
		t.Fatalf("reclassified item in %v, want office bin 1", moved.LogicalBinID)
	}

	if _, err := f.binning.BulkReclassify(ctx, api.ReclassifyRequest{ItemIDs: []int64{item.ID}}); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty request error = %v", err)
	}
}

func TestStatusAndZoneBins(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, f.store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	testsupport.NewBins(t, f.store, zone.ID, 2)
	testsupport.MapBins(t, f.store, zone)
	lp := testsupport.NewMediaType(t, f.store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, f.store, "Abba")

	for _, title := range []string{"Arrival", "Waterloo", "Voulez-Vous"} {
		if _, err := f.catalog.CreateItem(ctx, &catalog.MediaItem{
			ArtistID:    band.ID,
			Title:       title,
			MediaTypeID: lp.ID,
			Owner:       catalog.OwnerMe,
		}); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	status, err := f.reports.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Items != 3 || status.Artists != 1 || status.Unassigned != 0 {
		t.Fatalf("status = %+v", status)
	}

	bins, err := f.reports.ZoneBins(ctx, "SHELF")
	if err != nil {
		t.Fatalf("ZoneBins: %v", err)
	}
	if len(bins) != 2 {
		t.Fatalf("ZoneBins returned %d rows", len(bins))
	}
	if bins[0].ItemCount != 2 || bins[1].ItemCount != 1 {
		t.Fatalf("occupancy = %d/%d, want 2/1", bins[0].ItemCount, bins[1].ItemCount)
	}
	if bins[0].PhysicalLabel == "" {
		t.Fatal("mapped bin missing its physical label")
	}
}
