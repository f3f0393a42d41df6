package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"platter/internal/catalog"
)

// TaskList is a printable checklist of item moves.
type TaskList struct {
	Title string
	Moves []*catalog.RebinMove
}

// TaskListForRun collects one run's moves.
func TaskListForRun(ctx context.Context, q Querier, runID string) (*TaskList, error) {
	moves, err := q.ListMovesForRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &TaskList{Title: "Rebin tasks for run " + runID, Moves: moves}, nil
}

// PendingTaskList collects every not-yet-done move across all runs.
func PendingTaskList(ctx context.Context, q Querier) (*TaskList, error) {
	moves, err := q.ListPendingMoves(ctx)
	if err != nil {
		return nil, err
	}
	return &TaskList{Title: "Pending rebin tasks", Moves: moves}, nil
}

// Rows renders the moves as table cells for text output.
func (t *TaskList) Rows() [][]string {
	rows := make([][]string, 0, len(t.Moves))
	for _, move := range t.Moves {
		done := ""
		if move.IsDone {
			done = "x"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", move.ID),
			move.ArtistDisplayName,
			move.ItemTitle,
			orDash(move.OldPhysicalLabel),
			orDash(move.NewPhysicalLabel),
			done,
		})
	}
	return rows
}

// RowHeaders returns the column headers matching Rows.
func (t *TaskList) RowHeaders() []string {
	return []string{"MOVE", "ARTIST", "TITLE", "FROM", "TO", "DONE"}
}

// WritePDF renders the checklist as a printable PDF with a checkbox per
// move.
func (t *TaskList) WritePDF(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, t.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	writeTaskHeader(pdf)

	pdf.SetFont("Helvetica", "", 9)
	for _, move := range t.Moves {
		if pdf.GetY() > 265 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 9)
			writeTaskHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		x, y := pdf.GetXY()
		pdf.Rect(x+1, y+1, 3.5, 3.5, "D")
		if move.IsDone {
			pdf.Text(x+1.6, y+4, "X")
		}
		pdf.SetX(x + 7)
		pdf.CellFormat(68, 6, truncate(move.ArtistDisplayName+" / "+move.ItemTitle, 52), "", 0, "L", false, 0, "")
		pdf.CellFormat(52, 6, orDash(move.OldPhysicalLabel), "", 0, "L", false, 0, "")
		pdf.CellFormat(52, 6, orDash(move.NewPhysicalLabel), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func writeTaskHeader(pdf *gofpdf.Fpdf) {
	pdf.CellFormat(7, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(68, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(52, 6, "From", "B", 0, "L", false, 0, "")
	pdf.CellFormat(52, 6, "To", "B", 1, "L", false, 0, "")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
