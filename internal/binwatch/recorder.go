package binwatch

import (
	"sort"
	"strings"

	"platter/internal/binning"
	"platter/internal/catalog"
)

// ItemSnapshot captures the scope-determining fields of a media item at one
// point in time. Capture one before a write and one after; the pair tells
// the trigger layer which scopes the write touched.
type ItemSnapshot struct {
	ItemID          int64
	EffectiveZoneID int64
	BucketID        *int64
}

// SnapshotItem captures a snapshot from a loaded item. A nil item (creation
// has no "before", deletion has no "after") snapshots to nil.
func SnapshotItem(item *catalog.MediaItem) *ItemSnapshot {
	if item == nil {
		return nil
	}
	snap := &ItemSnapshot{
		ItemID:          item.ID,
		EffectiveZoneID: item.EffectiveZoneID,
	}
	if item.BucketID != nil {
		bucket := *item.BucketID
		snap.BucketID = &bucket
	}
	return snap
}

// Recorder accumulates the scopes affected by the writes of one transaction.
// Scopes form a set, so several triggers landing on the same scope collapse
// to one rebin. A whole-zone entry is a separate sentinel that absorbs every
// scoped entry for that zone at flush time; it is not the same thing as the
// zone's bucketless scope.
type Recorder struct {
	scopes     map[binning.ScopeKey]struct{}
	wholeZones map[int64]struct{}
	notes      map[string]struct{}
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		scopes:     make(map[binning.ScopeKey]struct{}),
		wholeZones: make(map[int64]struct{}),
		notes:      make(map[string]struct{}),
	}
}

// RecordScope adds one scope to the pending set.
func (r *Recorder) RecordScope(scope binning.Scope, note string) {
	r.scopes[scope.Key()] = struct{}{}
	r.addNote(note)
}

// RecordZone marks an entire zone for rebin, absorbing any scoped entries
// for the same zone.
func (r *Recorder) RecordZone(zoneID int64, note string) {
	r.wholeZones[zoneID] = struct{}{}
	r.addNote(note)
}

func (r *Recorder) addNote(note string) {
	if note != "" {
		r.notes[note] = struct{}{}
	}
}

// Empty reports whether nothing was recorded.
func (r *Recorder) Empty() bool {
	return len(r.scopes) == 0 && len(r.wholeZones) == 0
}

// Zones returns the whole-zone entries in deterministic order.
func (r *Recorder) Zones() []int64 {
	zones := make([]int64, 0, len(r.wholeZones))
	for id := range r.wholeZones {
		zones = append(zones, id)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	return zones
}

// Scopes returns the scoped entries not absorbed by a whole-zone entry, in
// deterministic order.
func (r *Recorder) Scopes() []binning.Scope {
	keys := make([]binning.ScopeKey, 0, len(r.scopes))
	for key := range r.scopes {
		if _, absorbed := r.wholeZones[key.ZoneID]; absorbed {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ZoneID != b.ZoneID {
			return a.ZoneID < b.ZoneID
		}
		if a.HasBucket != b.HasBucket {
			return !a.HasBucket
		}
		return a.BucketID < b.BucketID
	})

	scopes := make([]binning.Scope, len(keys))
	for i, key := range keys {
		scopes[i] = key.Scope()
	}
	return scopes
}

// Notes joins the trigger descriptions collected during the transaction into
// the notes string stamped onto the resulting rebin runs.
func (r *Recorder) Notes() string {
	notes := make([]string, 0, len(r.notes))
	for note := range r.notes {
		notes = append(notes, note)
	}
	sort.Strings(notes)
	return strings.Join(notes, "; ")
}
