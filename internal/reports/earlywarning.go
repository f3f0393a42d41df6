package reports

import (
	"context"
	"fmt"

	"platter/internal/catalog"
)

// DefaultWarnPercent is the fill threshold above which a bucket range is
// flagged as running out of room.
const DefaultWarnPercent = 85.0

// Querier is the catalog read surface the report builders need. Both
// *catalog.Store and *catalog.Tx satisfy it.
type Querier interface {
	ListZones(ctx context.Context) ([]*catalog.StorageZone, error)
	ListBuckets(ctx context.Context, activeOnly bool) ([]*catalog.SortBucket, error)
	ActiveBins(ctx context.Context, zoneID int64) ([]*catalog.LogicalBin, error)
	ActiveBinsInRange(ctx context.Context, zoneID int64, startBin, endBin int) ([]*catalog.LogicalBin, error)
	ActiveRange(ctx context.Context, zoneID, bucketID int64) (*catalog.BucketBinRange, error)
	ItemsInScope(ctx context.Context, zone *catalog.StorageZone, bucketID *int64) ([]*catalog.MediaItem, error)
	ListItems(ctx context.Context, filter catalog.ItemFilter) ([]*catalog.MediaItem, error)
	ListPhysicalBins(ctx context.Context, zoneID int64) ([]*catalog.PhysicalBin, error)
	ActiveMappingForLogical(ctx context.Context, logicalBinID int64) (*catalog.BinMapping, error)
	PhysicalLabelForLogical(ctx context.Context, logicalBinID int64) (string, error)
	ListMovesForRun(ctx context.Context, runID string) ([]*catalog.RebinMove, error)
	ListPendingMoves(ctx context.Context) ([]*catalog.RebinMove, error)
}

// EarlyWarningRow reports one (zone, bucket) scope's fill level.
type EarlyWarningRow struct {
	ZoneCode    string  `json:"zoneCode"`
	BucketCode  string  `json:"bucketCode"`
	BucketName  string  `json:"bucketName"`
	HasRange    bool    `json:"hasRange"`
	StartBin    int     `json:"startBin,omitempty"`
	EndBin      int     `json:"endBin,omitempty"`
	ItemCount   int     `json:"itemCount"`
	Capacity    int     `json:"capacity"`
	PercentFull float64 `json:"percentFull"`
	Flags       []string `json:"flags,omitempty"`
}

// EarlyWarning surveys every bucket of every bucketed, binned zone and
// flags scopes that are over the threshold or that hold items with no bin
// range at all. The latter is the loudest warning: those items are
// unassignable until someone defines a range.
func EarlyWarning(ctx context.Context, q Querier, warnPercent float64) ([]EarlyWarningRow, error) {
	if warnPercent <= 0 {
		warnPercent = DefaultWarnPercent
	}
	zones, err := q.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	buckets, err := q.ListBuckets(ctx, true)
	if err != nil {
		return nil, err
	}

	var rows []EarlyWarningRow
	for _, zone := range zones {
		if !zone.IsBinned || zone.SortStrategy != catalog.SortBucketed {
			continue
		}
		for _, bucket := range buckets {
			row, err := surveyScope(ctx, q, zone, bucket, warnPercent)
			if err != nil {
				return nil, err
			}
			if row != nil {
				rows = append(rows, *row)
			}
		}
	}
	return rows, nil
}

func surveyScope(ctx context.Context, q Querier, zone *catalog.StorageZone, bucket *catalog.SortBucket, warnPercent float64) (*EarlyWarningRow, error) {
	bucketID := bucket.ID
	items, err := q.ItemsInScope(ctx, zone, &bucketID)
	if err != nil {
		return nil, err
	}

	row := &EarlyWarningRow{
		ZoneCode:   zone.Code,
		BucketCode: bucket.Code,
		BucketName: bucket.Name,
		ItemCount:  len(items),
	}

	r, err := q.ActiveRange(ctx, zone.ID, bucket.ID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		if len(items) == 0 {
			// Nothing filed here and nowhere to file it; not worth a row.
			return nil, nil
		}
		row.Flags = append(row.Flags, "missing range")
		return row, nil
	}
	row.HasRange = true
	row.StartBin = r.StartBin
	row.EndBin = r.EndBin

	bins, err := q.ActiveBinsInRange(ctx, zone.ID, r.StartBin, r.EndBin)
	if err != nil {
		return nil, err
	}
	for _, bin := range bins {
		row.Capacity += bin.EffectiveCapacity(zone)
	}
	if row.Capacity > 0 {
		row.PercentFull = float64(row.ItemCount) / float64(row.Capacity) * 100
	}
	if row.ItemCount > row.Capacity {
		row.Flags = append(row.Flags, "overflow")
	} else if row.PercentFull >= warnPercent {
		row.Flags = append(row.Flags, fmt.Sprintf("over %.0f%%", warnPercent))
	}
	return row, nil
}
