package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"platter/internal/logging"
	"platter/internal/seed"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate reference data and bin grids",
	}

	seedCmd.AddCommand(newSeedReferenceCommand(ctx))
	seedCmd.AddCommand(newSeedBinsCommand(ctx))
	return seedCmd
}

func newSeedReferenceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "Seed zones, sort buckets, and media types (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				if err := seed.Reference(cmd.Context(), app.store, logging.NewNop()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reference data seeded")
				return nil
			})
		},
	}
}

func newSeedBinsCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var shelves int
	var perShelf int

	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Seed a zone's physical and logical bin grid (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				result, err := seed.Bins(cmd.Context(), app.store, logging.NewNop(), zoneCode, shelves, perShelf)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d logical bins, %d physical bins, %d mappings\n",
					zoneCode, result.LogicalBins, result.PhysicalBins, result.Mappings)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code to seed")
	cmd.Flags().IntVar(&shelves, "shelves", 6, "Number of shelves")
	cmd.Flags().IntVar(&perShelf, "per-shelf", 8, "Bins per shelf")
	return cmd
}
