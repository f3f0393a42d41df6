package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"platter/internal/catalog"
	"platter/internal/reports"
)

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var runID string
	var pdfOut bool

	cmd := &cobra.Command{
		Use:   "tasklist",
		Short: "Print a move checklist, or generate one for a zone",
		Long: `Without flags, prints every pending move as a checklist.
--run limits to a single recorded run. --zone generates a fresh
recorded rebin for the zone first, then prints its moves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				targetRun := runID
				if zoneCode != "" {
					runs, err := app.binning.GenerateTaskList(cmd.Context(), zoneCode)
					if err != nil {
						return err
					}
					if len(runs) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "Zone %s is already in order; nothing to move.\n", zoneCode)
						return nil
					}
					if len(runs) == 1 {
						targetRun = runs[0].ID
					} else {
						// Bucketed zones record one run per scope; show them all.
						for _, run := range runs {
							if err := printTaskList(cmd, app, run.ID, pdfOut); err != nil {
								return err
							}
						}
						return nil
					}
				}
				return printTaskList(cmd, app, targetRun, pdfOut)
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "", "Generate and record a fresh rebin for this zone")
	cmd.Flags().StringVar(&runID, "run", "", "Show the checklist for one recorded run")
	cmd.Flags().BoolVar(&pdfOut, "pdf", false, "Write a printable PDF to the export directory")
	return cmd
}

func printTaskList(cmd *cobra.Command, app *appServices, runID string, pdfOut bool) error {
	list, err := app.reports.TaskList(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(list.Moves) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no moves.\n", list.Title)
		return nil
	}
	if pdfOut {
		return writeTaskListPDF(cmd, app, list, runID)
	}
	fmt.Fprintln(cmd.OutOrStdout(), list.Title)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		list.RowHeaders(),
		list.Rows(),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func writeTaskListPDF(cmd *cobra.Command, app *appServices, list *reports.TaskList, runID string) error {
	name := "tasklist-pending.pdf"
	if runID != "" {
		name = "tasklist-" + runID + ".pdf"
	}
	path := filepath.Join(app.cfg.Paths.ExportDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create task list file: %w", err)
	}
	defer f.Close()
	if err := list.WritePDF(f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d moves)\n", path, len(list.Moves))
	return nil
}

func newMovesCommand(ctx *commandContext) *cobra.Command {
	movesCmd := &cobra.Command{
		Use:   "moves",
		Short: "Review rebin runs and tick off moves",
	}

	movesCmd.AddCommand(newMovesRunsCommand(ctx))
	movesCmd.AddCommand(newMovesListCommand(ctx))
	movesCmd.AddCommand(newMovesDoneCommand(ctx))
	return movesCmd
}

func newMovesRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded rebin runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				runs, err := app.store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, runs)
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					moves, err := app.store.ListMovesForRun(cmd.Context(), run.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						run.ID,
						run.CreatedAt.Format("2006-01-02 15:04"),
						strconv.Itoa(len(moves)),
						run.Notes,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"RUN", "WHEN", "MOVES", "NOTES"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newMovesListCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var pending bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List moves for a run, or every pending move",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				var moves []*catalog.RebinMove
				var err error
				switch {
				case runID != "":
					moves, err = app.store.ListMovesForRun(cmd.Context(), runID)
				case pending:
					moves, err = app.store.ListPendingMoves(cmd.Context())
				default:
					return fmt.Errorf("either --run or --pending is required")
				}
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, moves)
				}
				list := &reports.TaskList{Moves: moves}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					list.RowHeaders(),
					list.Rows(),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier")
	cmd.Flags().BoolVar(&pending, "pending", false, "Show not-yet-done moves across all runs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newMovesDoneCommand(ctx *commandContext) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done MOVE",
		Short: "Mark a move as physically completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				moveID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid move id %q", args[0])
				}
				if err := app.binning.MarkMoveDone(cmd.Context(), moveID, !undo); err != nil {
					return err
				}
				if undo {
					fmt.Fprintf(cmd.OutOrStdout(), "Move %d reopened\n", moveID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Move %d done\n", moveID)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Reopen a move marked done by mistake")
	return cmd
}
