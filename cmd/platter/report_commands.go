package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Capacity, ordering, and printable reports",
	}

	reportCmd.AddCommand(newEarlyWarningCommand(ctx))
	reportCmd.AddCommand(newFirstLastCommand(ctx))
	reportCmd.AddCommand(newBookCommand(ctx))
	reportCmd.AddCommand(newLabelsCommand(ctx))
	return reportCmd
}

func newEarlyWarningCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "early-warning",
		Short: "Show bucket ranges that are filling up or misconfigured",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				rows, err := app.reports.EarlyWarning(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No bucketed scopes to report.")
					return nil
				}
				tableRows := make([][]string, 0, len(rows))
				for _, row := range rows {
					bins := "-"
					if row.HasRange {
						bins = fmt.Sprintf("%d-%d", row.StartBin, row.EndBin)
					}
					tableRows = append(tableRows, []string{
						row.ZoneCode,
						row.BucketCode,
						bins,
						strconv.Itoa(row.ItemCount),
						strconv.Itoa(row.Capacity),
						fmt.Sprintf("%.0f%%", row.PercentFull),
						strings.Join(row.Flags, ", "),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ZONE", "BUCKET", "BINS", "ITEMS", "CAPACITY", "FULL", "FLAGS"},
					tableRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newFirstLastCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "first-last",
		Short: "Show the first and last item in each bin for shelf spot checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				rows, err := app.reports.FirstLast(cmd.Context(), zoneCode)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rows)
				}
				tableRows := make([][]string, 0, len(rows))
				for _, row := range rows {
					tableRows = append(tableRows, []string{
						strconv.Itoa(row.BinNumber),
						row.PhysicalLabel,
						strconv.Itoa(row.ItemCount),
						row.First,
						row.Last,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"BIN", "LOCATION", "ITEMS", "FIRST", "LAST"},
					tableRows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newBookCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var outPath string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Write a printable catalog book PDF for a zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				path := outPath
				if path == "" {
					path = filepath.Join(app.cfg.Paths.ExportDir, "catalog-"+strings.ToLower(zoneCode)+".pdf")
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create book file: %w", err)
				}
				defer f.Close()
				if err := app.reports.WriteCatalogBook(cmd.Context(), zoneCode, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (defaults under the export directory)")
	return cmd
}

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var outPath string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Write a QR label sheet PDF for a zone's physical bins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				path := outPath
				if path == "" {
					path = filepath.Join(app.cfg.Paths.ExportDir, "labels-"+strings.ToLower(zoneCode)+".pdf")
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create label file: %w", err)
				}
				defer f.Close()
				if err := app.reports.WriteLabelSheet(cmd.Context(), zoneCode, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (defaults under the export directory)")
	return cmd
}
