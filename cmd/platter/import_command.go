package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"platter/internal/importer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy catalog data",
	}

	var sheet string
	var dryRun bool
	var limit int

	xlsxCmd := &cobra.Command{
		Use:   "xlsx FILE",
		Short: "Import a legacy spreadsheet workbook",
		Long: `Reads the legacy workbook, creating or updating items keyed by
master key. A dry run performs the full pass inside a transaction and
rolls it back, so validation matches a real import exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				stats, err := app.importer.ImportFile(cmd.Context(), args[0], importer.Options{
					Sheet:  sheet,
					DryRun: dryRun,
					Limit:  limit,
				})
				if err != nil {
					return err
				}
				mode := "Imported"
				if dryRun {
					mode = "Dry run: would import"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d row(s): %d created, %d updated, %d skipped, %d new artist(s)\n",
					mode, stats.Rows, stats.Created, stats.Updated, stats.Skipped, stats.ArtistsCreated)
				return nil
			})
		},
	}

	xlsxCmd.Flags().StringVar(&sheet, "sheet", importer.DefaultSheet, "Worksheet to read")
	xlsxCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without saving anything")
	xlsxCmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many data rows (0 = all)")

	importCmd.AddCommand(xlsxCmd)
	return importCmd
}
