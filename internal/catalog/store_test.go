package catalog_test

import (
	"context"
	"testing"

	"platter/internal/catalog"
	"platter/internal/testsupport"
)

func openStore(t *testing.T) *catalog.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.MustOpenStore(t, cfg)
}

func TestSaveArtistPropagatesToFiledDependents(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	paul := testsupport.NewPerson(t, store, "Paul", "McCartney")
	wings, err := store.SaveArtist(ctx, &catalog.Artist{
		Kind:         catalog.ArtistBand,
		NamePrimary:  "Wings",
		FiledUnderID: &paul.ID,
	})
	if err != nil {
		t.Fatalf("SaveArtist wings: %v", err)
	}
	if wings.SortName != "Mccartney, Paul" {
		t.Fatalf("wings SortName = %q", wings.SortName)
	}

	// Renaming the filing target realigns every dependent in one save.
	paul.NameSecondary = "Macca"
	if _, err := store.SaveArtist(ctx, paul); err != nil {
		t.Fatalf("rename paul: %v", err)
	}
	reloaded, err := store.GetArtist(ctx, wings.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if reloaded.SortName != "Macca, Paul" {
		t.Fatalf("dependent SortName = %q after rename", reloaded.SortName)
	}
	if reloaded.DisplayName != "Wings" {
		t.Fatalf("dependent DisplayName = %q, must not change", reloaded.DisplayName)
	}
}

func TestAffectedArtistIDsIncludesDependents(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	paul := testsupport.NewPerson(t, store, "Paul", "McCartney")
	wings, err := store.SaveArtist(ctx, &catalog.Artist{
		Kind:         catalog.ArtistBand,
		NamePrimary:  "Wings",
		FiledUnderID: &paul.ID,
	})
	if err != nil {
		t.Fatalf("SaveArtist: %v", err)
	}
	testsupport.NewBand(t, store, "Unrelated")

	ids, err := store.AffectedArtistIDs(ctx, paul.ID)
	if err != nil {
		t.Fatalf("AffectedArtistIDs: %v", err)
	}
	got := map[int64]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(ids) != 2 || !got[paul.ID] || !got[wings.ID] {
		t.Fatalf("AffectedArtistIDs = %v, want {%d, %d}", ids, paul.ID, wings.ID)
	}
}

func TestFindArtistsByNormalizedName(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	testsupport.NewPerson(t, store, "Johnny", "Cash")
	testsupport.NewBand(t, store, "The Beatles")

	person, err := store.FindPerson(ctx, "Johnny", "Cash")
	if err != nil {
		t.Fatalf("FindPerson: %v", err)
	}
	if person == nil {
		t.Fatal("FindPerson returned nil for an existing person")
	}

	band, err := store.FindBand(ctx, "The Beatles")
	if err != nil {
		t.Fatalf("FindBand: %v", err)
	}
	if band == nil {
		t.Fatal("FindBand returned nil for an existing band")
	}

	missing, err := store.FindBand(ctx, "Nonexistent")
	if err != nil {
		t.Fatalf("FindBand missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("FindBand returned %v for an unknown band", missing)
	}
}

func TestUpdateItemLeavesEngineOwnedBinAlone(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	bins := testsupport.NewBins(t, store, zone.ID, 1)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, store, "Abba")
	item := testsupport.NewItem(t, store, band, lp, "Arrival")

	if err := store.UpdateItemBin(ctx, item.ID, &bins[0].ID); err != nil {
		t.Fatalf("UpdateItemBin: %v", err)
	}

	item.Notes = "gatefold sleeve"
	updated, err := store.UpdateItem(ctx, item)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Notes != "gatefold sleeve" {
		t.Fatalf("Notes = %q", updated.Notes)
	}
	if updated.LogicalBinID == nil || *updated.LogicalBinID != bins[0].ID {
		t.Fatalf("LogicalBinID = %v after a field update, want preserved bin %d", updated.LogicalBinID, bins[0].ID)
	}
}

func TestEffectiveZoneRespectsOverride(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	garage := testsupport.NewZone(t, store, "GARAGE", catalog.SortBucketed, true, 35, 8)
	office := testsupport.NewZone(t, store, "OFFICE", catalog.SortAlphaOnly, true, 35, 8)
	lp := testsupport.NewMediaType(t, store, "Standard LP", garage.ID)
	band := testsupport.NewBand(t, store, "Abba")
	item := testsupport.NewItem(t, store, band, lp, "Arrival")

	if item.EffectiveZoneID != garage.ID {
		t.Fatalf("EffectiveZoneID = %d, want media type default %d", item.EffectiveZoneID, garage.ID)
	}

	item.ZoneOverrideID = &office.ID
	updated, err := store.UpdateItem(ctx, item)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.EffectiveZoneID != office.ID {
		t.Fatalf("EffectiveZoneID = %d after override, want %d", updated.EffectiveZoneID, office.ID)
	}
}

func TestItemsInScopePartitionsBucketedZones(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "GARAGE", catalog.SortBucketed, true, 35, 8)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	country := testsupport.NewBucket(t, store, "COUNTRY", 10)

	band := testsupport.NewBand(t, store, "Alabama")
	bucketed := testsupport.NewBucketedItem(t, store, band, lp, country, "Mountain Music")
	loose := testsupport.NewItem(t, store, band, lp, "Greatest Hits")

	inBucket, err := store.ItemsInScope(ctx, zone, &country.ID)
	if err != nil {
		t.Fatalf("ItemsInScope bucket: %v", err)
	}
	if len(inBucket) != 1 || inBucket[0].ID != bucketed.ID {
		t.Fatalf("bucket scope = %v, want only item %d", inBucket, bucketed.ID)
	}

	bucketless, err := store.ItemsInScope(ctx, zone, nil)
	if err != nil {
		t.Fatalf("ItemsInScope bucketless: %v", err)
	}
	if len(bucketless) != 1 || bucketless[0].ID != loose.ID {
		t.Fatalf("bucketless scope = %v, want only item %d", bucketless, loose.ID)
	}
}

func TestItemsInScopeIgnoresBucketsInAlphaZones(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "OFFICE", catalog.SortAlphaOnly, true, 35, 8)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	country := testsupport.NewBucket(t, store, "COUNTRY", 10)
	band := testsupport.NewBand(t, store, "Alabama")
	testsupport.NewBucketedItem(t, store, band, lp, country, "Mountain Music")
	testsupport.NewItem(t, store, band, lp, "Greatest Hits")

	items, err := store.ItemsInScope(ctx, zone, nil)
	if err != nil {
		t.Fatalf("ItemsInScope: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("alpha-only scope saw %d items, want all 2", len(items))
	}
}

func TestSetBucketRangeSupersedesPrevious(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "GARAGE", catalog.SortBucketed, true, 35, 8)
	country := testsupport.NewBucket(t, store, "COUNTRY", 10)

	if _, err := store.SetBucketRange(ctx, zone.ID, country.ID, 1, 4); err != nil {
		t.Fatalf("first SetBucketRange: %v", err)
	}
	if _, err := store.SetBucketRange(ctx, zone.ID, country.ID, 5, 9); err != nil {
		t.Fatalf("second SetBucketRange: %v", err)
	}

	active, err := store.ActiveRange(ctx, zone.ID, country.ID)
	if err != nil {
		t.Fatalf("ActiveRange: %v", err)
	}
	if active == nil || active.StartBin != 5 || active.EndBin != 9 {
		t.Fatalf("active range = %+v, want 5-9", active)
	}

	ranges, err := store.ListRanges(ctx, zone.ID)
	if err != nil {
		t.Fatalf("ListRanges: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("ListRanges returned %d active ranges, want 1", len(ranges))
	}

	if _, err := store.SetBucketRange(ctx, zone.ID, country.ID, 9, 5); err == nil {
		t.Error("inverted range was accepted")
	}
}

func TestActivateMappingKeepsOneActivePerPhysical(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	bins := testsupport.NewBins(t, store, zone.ID, 2)
	physical, err := store.UpsertPhysicalBin(ctx, &catalog.PhysicalBin{
		ZoneID:      zone.ID,
		ShelfNumber: 1,
		BinNumber:   1,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("UpsertPhysicalBin: %v", err)
	}

	if _, err := store.ActivateMapping(ctx, bins[0].ID, physical.ID); err != nil {
		t.Fatalf("first ActivateMapping: %v", err)
	}
	if _, err := store.ActivateMapping(ctx, bins[1].ID, physical.ID); err != nil {
		t.Fatalf("second ActivateMapping: %v", err)
	}

	first, err := store.ActiveMappingForLogical(ctx, bins[0].ID)
	if err != nil {
		t.Fatalf("ActiveMappingForLogical: %v", err)
	}
	if first != nil {
		t.Fatalf("first logical bin still maps to the physical bin: %+v", first)
	}

	label, err := store.PhysicalLabelForLogical(ctx, bins[1].ID)
	if err != nil {
		t.Fatalf("PhysicalLabelForLogical: %v", err)
	}
	if label != "SHELF: Shelf 1 Bin 1" {
		t.Fatalf("label = %q", label)
	}

	unmapped, err := store.PhysicalLabelForLogical(ctx, bins[0].ID)
	if err != nil {
		t.Fatalf("PhysicalLabelForLogical unmapped: %v", err)
	}
	if unmapped != "" {
		t.Fatalf("unmapped logical bin resolved label %q", unmapped)
	}
}

func TestRunsAndMovesLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	bins := testsupport.NewBins(t, store, zone.ID, 1)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	item := testsupport.NewItem(t, store, testsupport.NewBand(t, store, "Abba"), lp, "Arrival")

	run, err := store.CreateRun(ctx, &zone.ID, nil, "test run")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run has no identifier")
	}

	err = store.CreateMoves(ctx, []*catalog.RebinMove{{
		RunID:            run.ID,
		MediaItemID:      item.ID,
		NewLogicalBinID:  &bins[0].ID,
		NewPhysicalLabel: "SHELF: Shelf 1 Bin 1",
	}})
	if err != nil {
		t.Fatalf("CreateMoves: %v", err)
	}

	pending, err := store.ListPendingMoves(ctx)
	if err != nil {
		t.Fatalf("ListPendingMoves: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending moves = %d, want 1", len(pending))
	}
	if pending[0].ItemTitle != "Arrival" || pending[0].ArtistDisplayName != "Abba" {
		t.Fatalf("move display fields = %q / %q", pending[0].ArtistDisplayName, pending[0].ItemTitle)
	}

	updated, err := store.MarkMoveDone(ctx, pending[0].ID, true)
	if err != nil {
		t.Fatalf("MarkMoveDone: %v", err)
	}
	if !updated {
		t.Fatal("MarkMoveDone reported no row updated")
	}

	pending, err = store.ListPendingMoves(ctx)
	if err != nil {
		t.Fatalf("ListPendingMoves after done: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending moves = %d after completion, want 0", len(pending))
	}

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil || latest.ID != run.ID {
		t.Fatalf("LatestRun = %v, want %s", latest, run.ID)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, store, "Abba")

	sentinel := func() error {
		return store.WithTx(ctx, func(tx *catalog.Tx) error {
			if _, err := tx.CreateItem(ctx, &catalog.MediaItem{
				ArtistID:    band.ID,
				Title:       "Phantom",
				MediaTypeID: lp.ID,
				Owner:       catalog.OwnerMe,
			}); err != nil {
				return err
			}
			return context.Canceled
		})
	}
	if err := sentinel(); err == nil {
		t.Fatal("transaction error was swallowed")
	}

	items, err := store.ListItems(ctx, catalog.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rolled-back insert is visible: %d items", len(items))
	}
}

func TestTagsFilterItems(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	zone := testsupport.NewZone(t, store, "SHELF", catalog.SortAlphaOnly, true, 2, 8)
	lp := testsupport.NewMediaType(t, store, "Standard LP", zone.ID)
	band := testsupport.NewBand(t, store, "Abba")
	tagged := testsupport.NewItem(t, store, band, lp, "Arrival")
	testsupport.NewItem(t, store, band, lp, "Waterloo")

	tag, err := store.UpsertTag(ctx, &catalog.Tag{Name: "Sealed Copy", Scope: catalog.TagScopeItem})
	if err != nil {
		t.Fatalf("UpsertTag: %v", err)
	}
	if tag.Slug == "" {
		t.Fatal("tag slug not derived")
	}
	if err := store.TagItem(ctx, tagged.ID, tag.ID); err != nil {
		t.Fatalf("TagItem: %v", err)
	}

	items, err := store.ListItems(ctx, catalog.ItemFilter{TagSlug: tag.Slug})
	if err != nil {
		t.Fatalf("ListItems by tag: %v", err)
	}
	if len(items) != 1 || items[0].ID != tagged.ID {
		t.Fatalf("tag filter returned %v, want only item %d", items, tagged.ID)
	}
}
