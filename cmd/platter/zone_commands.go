package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newZoneCommand(ctx *commandContext) *cobra.Command {
	zoneCmd := &cobra.Command{
		Use:   "zone",
		Short: "Inspect and tune storage zones",
	}

	zoneCmd.AddCommand(newZoneListCommand(ctx))
	zoneCmd.AddCommand(newZoneSetCapacityCommand(ctx))
	return zoneCmd
}

func newZoneListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List storage zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				zones, err := app.store.ListZones(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, zones)
				}
				rows := make([][]string, 0, len(zones))
				for _, z := range zones {
					rows = append(rows, []string{
						z.Code,
						z.Name,
						string(z.SortStrategy),
						yesNo(z.IsBinned),
						strconv.Itoa(z.DefaultBinCapacity),
						strconv.Itoa(z.BinsPerShelf),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"CODE", "NAME", "STRATEGY", "BINNED", "CAPACITY", "PER SHELF"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newZoneSetCapacityCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-capacity ZONE CAPACITY",
		Short: "Change a zone's default bin capacity; the whole zone rebins",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				capacity, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid capacity %q", args[1])
				}
				if err := app.catalog.SetZoneCapacity(cmd.Context(), args[0], capacity); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Zone %s default capacity set to %d\n", args[0], capacity)
				return nil
			})
		},
	}
	return cmd
}

func newBucketCommand(ctx *commandContext) *cobra.Command {
	bucketCmd := &cobra.Command{
		Use:   "bucket",
		Short: "Inspect sort buckets",
	}

	var jsonOut bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sort buckets in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				buckets, err := app.store.ListBuckets(cmd.Context(), false)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, buckets)
				}
				rows := make([][]string, 0, len(buckets))
				for _, b := range buckets {
					rows = append(rows, []string{
						strconv.FormatInt(b.ID, 10),
						b.Code,
						b.Name,
						strconv.Itoa(b.SortOrder),
						yesNo(b.IsActive),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "CODE", "NAME", "ORDER", "ACTIVE"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")

	bucketCmd.AddCommand(listCmd)
	return bucketCmd
}

func newBinCommand(ctx *commandContext) *cobra.Command {
	binCmd := &cobra.Command{
		Use:   "bin",
		Short: "Inspect and tune logical bins",
	}

	binCmd.AddCommand(newBinListCommand(ctx))
	binCmd.AddCommand(newBinSetOverrideCommand(ctx))
	binCmd.AddCommand(newBinMapCommand(ctx))
	return binCmd
}

func newBinListCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a zone's active bins with occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				bins, err := app.reports.ZoneBins(cmd.Context(), zoneCode)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, bins)
				}
				rows := make([][]string, 0, len(bins))
				for _, b := range bins {
					override := ""
					if b.CapacityOverride != nil {
						override = strconv.Itoa(*b.CapacityOverride)
					}
					rows = append(rows, []string{
						strconv.Itoa(b.Number),
						b.PhysicalLabel,
						strconv.Itoa(b.ItemCount),
						strconv.Itoa(b.Capacity),
						override,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"BIN", "LOCATION", "ITEMS", "CAPACITY", "OVERRIDE"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newBinSetOverrideCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var clear bool

	cmd := &cobra.Command{
		Use:   "set-override BIN [CAPACITY]",
		Short: "Set or clear one bin's capacity override; the zone rebins",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				number, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid bin number %q", args[0])
				}
				var override *int
				switch {
				case clear:
				case len(args) == 2:
					capacity, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("invalid capacity %q", args[1])
					}
					override = &capacity
				default:
					return fmt.Errorf("a capacity value or --clear is required")
				}
				if err := app.catalog.SetBinOverride(cmd.Context(), zoneCode, number, override); err != nil {
					return err
				}
				if override == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared override on %s bin %d\n", zoneCode, number)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Set %s bin %d capacity to %d\n", zoneCode, number, *override)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the capacity override")
	return cmd
}

func newBinMapCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string

	cmd := &cobra.Command{
		Use:   "map BIN SHELF POSITION",
		Short: "Point a logical bin at a physical shelf position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				number, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid bin number %q", args[0])
				}
				shelf, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid shelf %q", args[1])
				}
				position, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid position %q", args[2])
				}

				zone, err := app.store.GetZoneByCode(cmd.Context(), zoneCode)
				if err != nil {
					return err
				}
				if zone == nil {
					return fmt.Errorf("unknown zone %q", zoneCode)
				}
				logical, err := app.store.GetLogicalBinByNumber(cmd.Context(), zone.ID, number)
				if err != nil {
					return err
				}
				if logical == nil {
					return fmt.Errorf("logical bin %d not found in %s", number, zoneCode)
				}
				physicals, err := app.store.ListPhysicalBins(cmd.Context(), zone.ID)
				if err != nil {
					return err
				}
				for _, p := range physicals {
					if p.ShelfNumber == shelf && p.BinNumber == position {
						if _, err := app.catalog.ActivateMapping(cmd.Context(), logical.ID, p.ID); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Bin %d now maps to %s\n", number, p.DisplayLabel(zone.Code))
						return nil
					}
				}
				return fmt.Errorf("no physical bin at shelf %d position %d in %s", shelf, position, zoneCode)
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	return cmd
}

func newRangeCommand(ctx *commandContext) *cobra.Command {
	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Manage bucket bin ranges",
	}

	rangeCmd.AddCommand(newRangeSetCommand(ctx))
	rangeCmd.AddCommand(newRangeListCommand(ctx))
	return rangeCmd
}

func newRangeSetCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string

	cmd := &cobra.Command{
		Use:   "set BUCKET START END",
		Short: "Set the active bin range for a bucket (supersedes any previous range)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				start, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid start bin %q", args[1])
				}
				end, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid end bin %q", args[2])
				}
				zone, err := app.store.GetZoneByCode(cmd.Context(), zoneCode)
				if err != nil {
					return err
				}
				if zone == nil {
					return fmt.Errorf("unknown zone %q", zoneCode)
				}
				bucket, err := app.store.GetBucketByCode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if bucket == nil {
					return fmt.Errorf("unknown bucket %q", args[0])
				}
				r, err := app.store.SetBucketRange(cmd.Context(), zone.ID, bucket.ID, start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s now occupies bins %d-%d\n", zoneCode, bucket.Code, r.StartBin, r.EndBin)
				fmt.Fprintln(cmd.OutOrStdout(), "Run `platter rebin scope` to move items into the new range.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	return cmd
}

func newRangeListCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a zone's bucket bin ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				zone, err := app.store.GetZoneByCode(cmd.Context(), zoneCode)
				if err != nil {
					return err
				}
				if zone == nil {
					return fmt.Errorf("unknown zone %q", zoneCode)
				}
				ranges, err := app.store.ListRanges(cmd.Context(), zone.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, ranges)
				}
				buckets, err := app.store.ListBuckets(cmd.Context(), false)
				if err != nil {
					return err
				}
				codes := make(map[int64]string, len(buckets))
				for _, b := range buckets {
					codes[b.ID] = b.Code
				}
				rows := make([][]string, 0, len(ranges))
				for _, r := range ranges {
					rows = append(rows, []string{
						codes[r.BucketID],
						strconv.Itoa(r.StartBin),
						strconv.Itoa(r.EndBin),
						yesNo(r.IsActive),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"BUCKET", "START", "END", "ACTIVE"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "GARAGE_MAIN", "Zone code")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
