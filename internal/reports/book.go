package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"platter/internal/binning"
	"platter/internal/catalog"
)

// CatalogBook renders the printable shelf book for a zone: one section per
// sort bucket in bucket order (plus a trailing section for unclassified
// items), each listing its items in filing order with year and bin label.
// Zones that do not sort per bucket get a single section.
func CatalogBook(ctx context.Context, q Querier, zone *catalog.StorageZone, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s Catalog", zone.Name), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	labels := newLabelCache(q)

	if zone.SortStrategy == catalog.SortBucketed {
		buckets, err := q.ListBuckets(ctx, true)
		if err != nil {
			return err
		}
		for _, bucket := range buckets {
			bucketID := bucket.ID
			items, err := q.ItemsInScope(ctx, zone, &bucketID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				continue
			}
			if err := writeBookSection(ctx, pdf, labels, bucket.Name, items); err != nil {
				return err
			}
		}
		unbucketed, err := q.ItemsInScope(ctx, zone, nil)
		if err != nil {
			return err
		}
		if len(unbucketed) > 0 {
			if err := writeBookSection(ctx, pdf, labels, "Unclassified", unbucketed); err != nil {
				return err
			}
		}
	} else {
		items, err := q.ItemsInScope(ctx, zone, nil)
		if err != nil {
			return err
		}
		if err := writeBookSection(ctx, pdf, labels, zone.Name, items); err != nil {
			return err
		}
	}

	return pdf.Output(w)
}

func writeBookSection(ctx context.Context, pdf *gofpdf.Fpdf, labels *labelCache, title string, items []*catalog.MediaItem) error {
	binning.SortItems(items)

	if pdf.GetY() > 250 {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		year := ""
		if item.ReleaseYear != nil {
			year = fmt.Sprintf("%d", *item.ReleaseYear)
		}
		label := ""
		if item.LogicalBinID != nil {
			var err error
			label, err = labels.get(ctx, *item.LogicalBinID)
			if err != nil {
				return err
			}
		}
		pdf.CellFormat(70, 5, truncate(item.ArtistSortName, 44), "", 0, "L", false, 0, "")
		pdf.CellFormat(62, 5, truncate(item.Title, 40), "", 0, "L", false, 0, "")
		pdf.CellFormat(12, 5, year, "", 0, "L", false, 0, "")
		pdf.CellFormat(36, 5, label, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	return nil
}

// labelCache memoizes physical labels per logical bin; a book section reuses
// the same handful of bins hundreds of times.
type labelCache struct {
	q      Querier
	labels map[int64]string
}

func newLabelCache(q Querier) *labelCache {
	return &labelCache{q: q, labels: make(map[int64]string)}
}

func (c *labelCache) get(ctx context.Context, logicalBinID int64) (string, error) {
	if label, ok := c.labels[logicalBinID]; ok {
		return label, nil
	}
	label, err := c.q.PhysicalLabelForLogical(ctx, logicalBinID)
	if err != nil {
		return "", err
	}
	c.labels[logicalBinID] = label
	return label, nil
}
