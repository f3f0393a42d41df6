package binning

import (
	"fmt"

	"platter/internal/catalog"
)

// Scope identifies one independent placement universe: a zone, plus a bucket
// when the zone places per bucket. A nil bucket in a BUCKETED zone is the
// persistent "bucketless" scope, not an error.
type Scope struct {
	ZoneID   int64
	BucketID *int64
}

// String renders the scope for logs and run notes.
func (s Scope) String() string {
	if s.BucketID == nil {
		return fmt.Sprintf("zone=%d", s.ZoneID)
	}
	return fmt.Sprintf("zone=%d bucket=%d", s.ZoneID, *s.BucketID)
}

// Key returns a comparable form suitable for deduplicating scope sets.
func (s Scope) Key() ScopeKey {
	key := ScopeKey{ZoneID: s.ZoneID}
	if s.BucketID != nil {
		key.BucketID = *s.BucketID
		key.HasBucket = true
	}
	return key
}

// ScopeKey is the comparable form of a Scope.
type ScopeKey struct {
	ZoneID    int64
	BucketID  int64
	HasBucket bool
}

// Scope returns the ScopeKey's Scope form.
func (k ScopeKey) Scope() Scope {
	scope := Scope{ZoneID: k.ZoneID}
	if k.HasBucket {
		bucket := k.BucketID
		scope.BucketID = &bucket
	}
	return scope
}

// ScopeForItem computes the scope governing an item's placement within its
// effective zone. Zones that do not sort per bucket normalize the bucket to
// nil so items with stray bucket values cannot fragment the zone scope.
func ScopeForItem(zone *catalog.StorageZone, item *catalog.MediaItem) Scope {
	scope := Scope{ZoneID: zone.ID}
	if zone.SortStrategy == catalog.SortBucketed {
		scope.BucketID = item.BucketID
	}
	return scope
}

// NormalizeBucket applies the same bucket normalization to an explicit
// (zone, bucket) pair.
func NormalizeBucket(zone *catalog.StorageZone, bucketID *int64) *int64 {
	if zone.SortStrategy != catalog.SortBucketed {
		return nil
	}
	return bucketID
}
