package reports

import (
	"context"
	"fmt"
	"sort"

	"platter/internal/binning"
	"platter/internal/catalog"
)

// UnmappedLabel marks a logical bin with no active physical mapping in the
// first/last index.
const UnmappedLabel = "UNMAPPED"

// FirstLastRow indexes one logical bin by its first and last filed item.
type FirstLastRow struct {
	BinNumber     int    `json:"binNumber"`
	PhysicalLabel string `json:"physicalLabel"`
	ItemCount     int    `json:"itemCount"`
	First         string `json:"first,omitempty"`
	Last          string `json:"last,omitempty"`
}

// FirstLast builds the shelf index for a zone: every active logical bin with
// its physical label and the first and last item filed in it, ordered by the
// mapped physical position (shelf, then bin) with unmapped bins trailing in
// number order.
func FirstLast(ctx context.Context, q Querier, zone *catalog.StorageZone) ([]FirstLastRow, error) {
	bins, err := q.ActiveBins(ctx, zone.ID)
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, nil
	}

	physical, err := q.ListPhysicalBins(ctx, zone.ID)
	if err != nil {
		return nil, err
	}
	physicalByID := make(map[int64]*catalog.PhysicalBin, len(physical))
	for _, p := range physical {
		physicalByID[p.ID] = p
	}

	items, err := q.ListItems(ctx, catalog.ItemFilter{ZoneID: zone.ID})
	if err != nil {
		return nil, err
	}
	binning.SortItems(items)
	itemsByBin := make(map[int64][]*catalog.MediaItem)
	for _, item := range items {
		if item.LogicalBinID == nil {
			continue
		}
		itemsByBin[*item.LogicalBinID] = append(itemsByBin[*item.LogicalBinID], item)
	}

	type orderedRow struct {
		row    FirstLastRow
		linear int
		mapped bool
	}
	rows := make([]orderedRow, 0, len(bins))
	for _, bin := range bins {
		row := FirstLastRow{BinNumber: bin.Number, PhysicalLabel: UnmappedLabel}
		ordered := orderedRow{linear: bin.Number}

		mapping, err := q.ActiveMappingForLogical(ctx, bin.ID)
		if err != nil {
			return nil, err
		}
		if mapping != nil {
			if p := physicalByID[mapping.PhysicalBinID]; p != nil {
				row.PhysicalLabel = p.DisplayLabel(zone.Code)
				ordered.linear = p.LinearBinNumber(zone)
				ordered.mapped = true
			}
		}

		filed := itemsByBin[bin.ID]
		row.ItemCount = len(filed)
		if len(filed) > 0 {
			row.First = itemLine(filed[0])
			row.Last = itemLine(filed[len(filed)-1])
		}
		ordered.row = row
		rows = append(rows, ordered)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].mapped != rows[j].mapped {
			return rows[i].mapped
		}
		return rows[i].linear < rows[j].linear
	})

	out := make([]FirstLastRow, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out, nil
}

func itemLine(item *catalog.MediaItem) string {
	return fmt.Sprintf("%s / %s", item.ArtistSortName, item.Title)
}
