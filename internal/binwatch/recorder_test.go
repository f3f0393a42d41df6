package binwatch

import (
	"testing"

	"platter/internal/binning"
)

func scopeFor(zoneID int64, bucketID *int64) binning.Scope {
	return binning.Scope{ZoneID: zoneID, BucketID: bucketID}
}

func TestRecorderDeduplicatesScopes(t *testing.T) {
	rec := NewRecorder()
	bucket := int64(4)

	rec.RecordScope(scopeFor(1, &bucket), "first")
	rec.RecordScope(scopeFor(1, &bucket), "second")
	rec.RecordScope(scopeFor(1, nil), "third")

	scopes := rec.Scopes()
	if len(scopes) != 2 {
		t.Fatalf("Scopes() = %v, want 2 distinct scopes", scopes)
	}
}

func TestRecorderBucketlessIsNotWholeZone(t *testing.T) {
	rec := NewRecorder()
	rec.RecordScope(scopeFor(1, nil), "")

	if len(rec.Zones()) != 0 {
		t.Fatal("a bucketless scope must not appear as a whole-zone entry")
	}
	scopes := rec.Scopes()
	if len(scopes) != 1 || scopes[0].BucketID != nil {
		t.Fatalf("Scopes() = %v", scopes)
	}
}

func TestRecorderWholeZoneAbsorbsScopes(t *testing.T) {
	rec := NewRecorder()
	bucket := int64(4)
	rec.RecordScope(scopeFor(1, &bucket), "scoped")
	rec.RecordScope(scopeFor(2, &bucket), "other zone")
	rec.RecordZone(1, "whole zone")

	zones := rec.Zones()
	if len(zones) != 1 || zones[0] != 1 {
		t.Fatalf("Zones() = %v", zones)
	}
	scopes := rec.Scopes()
	if len(scopes) != 1 || scopes[0].ZoneID != 2 {
		t.Fatalf("Scopes() = %v, want only zone 2 to survive absorption", scopes)
	}
}

func TestRecorderScopesOrderIsDeterministic(t *testing.T) {
	build := func() []binning.Scope {
		rec := NewRecorder()
		b2, b9 := int64(2), int64(9)
		rec.RecordScope(scopeFor(3, &b9), "")
		rec.RecordScope(scopeFor(1, nil), "")
		rec.RecordScope(scopeFor(3, &b2), "")
		rec.RecordScope(scopeFor(3, nil), "")
		return rec.Scopes()
	}
	first := build()
	for i := 0; i < 5; i++ {
		again := build()
		if len(again) != len(first) {
			t.Fatalf("length diverged: %v vs %v", first, again)
		}
		for j := range first {
			if first[j].String() != again[j].String() {
				t.Fatalf("order diverged at %d: %v vs %v", j, first, again)
			}
		}
	}
	// Zone order, bucketless scope ahead of bucketed ones.
	if first[0].ZoneID != 1 || first[1].ZoneID != 3 || first[1].BucketID != nil {
		t.Fatalf("unexpected canonical order: %v", first)
	}
}

func TestRecorderNotes(t *testing.T) {
	rec := NewRecorder()
	rec.RecordScope(scopeFor(1, nil), "MediaItem saved")
	rec.RecordScope(scopeFor(2, nil), "MediaItem saved")
	rec.RecordZone(1, "StorageZone default_bin_capacity changed")

	want := "MediaItem saved; StorageZone default_bin_capacity changed"
	if got := rec.Notes(); got != want {
		t.Fatalf("Notes() = %q, want %q", got, want)
	}
}

func TestRecorderEmpty(t *testing.T) {
	rec := NewRecorder()
	if !rec.Empty() {
		t.Fatal("fresh recorder is not empty")
	}
	rec.RecordScope(scopeFor(1, nil), "")
	if rec.Empty() {
		t.Fatal("recorder with a scope reports empty")
	}
}
