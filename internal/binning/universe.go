package binning

import (
	"context"
	"fmt"

	"platter/internal/catalog"
)

// binsForScope resolves the ordered list of active logical bins eligible for
// a scope, plus a diagnostic reason string describing the universe.
//
// An empty list is a configuration gap (typically a missing bucket bin
// range), never a crash: callers treat "no bins" as an explicit unassignable
// state.
func binsForScope(ctx context.Context, q Queries, zone *catalog.StorageZone, bucketID *int64) ([]*catalog.LogicalBin, string, error) {
	if zone.SortStrategy == catalog.SortBucketed {
		if bucketID == nil {
			bins, err := q.ActiveBins(ctx, zone.ID)
			if err != nil {
				return nil, "", err
			}
			return bins, fmt.Sprintf("%s all bins (bucketless)", zone.Code), nil
		}

		r, err := q.ActiveRange(ctx, zone.ID, *bucketID)
		if err != nil {
			return nil, "", err
		}
		if r == nil {
			return nil, fmt.Sprintf("%s bucket=%d (no bucket bin range)", zone.Code, *bucketID), nil
		}

		bins, err := q.ActiveBinsInRange(ctx, zone.ID, r.StartBin, r.EndBin)
		if err != nil {
			return nil, "", err
		}
		return bins, fmt.Sprintf("%s bucket=%d bins %d-%d", zone.Code, *bucketID, r.StartBin, r.EndBin), nil
	}

	bins, err := q.ActiveBins(ctx, zone.ID)
	if err != nil {
		return nil, "", err
	}
	return bins, fmt.Sprintf("%s alpha-only all bins", zone.Code), nil
}
