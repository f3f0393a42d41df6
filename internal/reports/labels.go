package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"platter/internal/catalog"
)

// Label sheet geometry, sized for common 3x8 adhesive sheets.
const (
	labelCols       = 3
	labelRows       = 8
	labelMarginLeft = 7.0
	labelMarginTop  = 12.5
	labelGapX       = 2.5
	labelGapY       = 0.0
)

// LabelSheet renders one QR label per active physical bin in a zone. The QR
// encodes a stable bin reference so scanning a shelf jumps straight to the
// bin's contents.
func LabelSheet(ctx context.Context, q Querier, zone *catalog.StorageZone, w io.Writer) error {
	bins, err := q.ListPhysicalBins(ctx, zone.ID)
	if err != nil {
		return err
	}
	active := bins[:0]
	for _, bin := range bins {
		if bin.IsActive {
			active = append(active, bin)
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "B", 10)

	pageWidth, pageHeight := 210.0, 297.0
	availW := pageWidth - labelMarginLeft*2
	availH := pageHeight - labelMarginTop*2
	labelW := (availW - float64(labelCols-1)*labelGapX) / float64(labelCols)
	labelH := (availH - float64(labelRows-1)*labelGapY) / float64(labelRows)
	perPage := labelCols * labelRows

	for i, bin := range active {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		indexOnPage := i % perPage
		col := indexOnPage % labelCols
		row := indexOnPage / labelCols
		x := labelMarginLeft + float64(col)*(labelW+labelGapX)
		y := labelMarginTop + float64(row)*(labelH+labelGapY)

		png, err := qrcode.Encode(BinReference(zone, bin), qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("encode qr for %s: %w", bin.DisplayLabel(zone.Code), err)
		}
		imgName := fmt.Sprintf("qr_%d", bin.ID)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))

		qrSize := labelH * 0.62
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		pdf.ImageOptions(imgName, x+(labelW-qrSize)/2, y+2, qrSize, qrSize, false, opts, 0, "")

		pdf.SetXY(x, y+labelH-9)
		pdf.SetFontSize(10)
		pdf.CellFormat(labelW, 4, bin.DisplayLabel(zone.Code), "", 1, "C", false, 0, "")
		pdf.SetX(x)
		pdf.SetFontSize(7)
		pdf.CellFormat(labelW, 3, fmt.Sprintf("bin %d", bin.LinearBinNumber(zone)), "", 0, "C", false, 0, "")
	}

	return pdf.Output(w)
}

// BinReference is the stable identifier a label's QR code carries.
func BinReference(zone *catalog.StorageZone, bin *catalog.PhysicalBin) string {
	return fmt.Sprintf("platter:bin:%s:%d:%d", zone.Code, bin.ShelfNumber, bin.BinNumber)
}
