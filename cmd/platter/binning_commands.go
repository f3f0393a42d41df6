package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"platter/internal/api"
	"platter/internal/catalog"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "assign ITEM",
		Short: "Compute (and by default persist) one item's bin placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				itemID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				outcome, err := app.binning.AssignItem(cmd.Context(), itemID, !dryRun)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, outcome)
				}
				printOutcome(cmd, outcome)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the placement without saving it")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome api.AssignmentOutcome) {
	if !outcome.Assigned {
		fmt.Fprintf(cmd.OutOrStdout(), "Item %d: unassigned (%s)\n", outcome.ItemID, outcome.Reason)
		return
	}
	where := outcome.PhysicalLabel
	if where == "" && outcome.BinNumber != nil {
		where = fmt.Sprintf("bin %d", *outcome.BinNumber)
	}
	verb := "would go to"
	if outcome.Persisted {
		verb = "placed in"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item %d %s %s (%s)\n", outcome.ItemID, verb, where, outcome.Reason)
}

func newRebinCommand(ctx *commandContext) *cobra.Command {
	rebinCmd := &cobra.Command{
		Use:   "rebin",
		Short: "Recompute placement for a whole zone or one scope",
	}

	rebinCmd.AddCommand(newRebinZoneCommand(ctx))
	rebinCmd.AddCommand(newRebinScopeCommand(ctx))
	return rebinCmd
}

func newRebinZoneCommand(ctx *commandContext) *cobra.Command {
	var record bool
	var notes string

	cmd := &cobra.Command{
		Use:   "zone CODE",
		Short: "Rebin every scope in a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				runs, err := app.binning.RebinZone(cmd.Context(), args[0], record, notes)
				if err != nil {
					return err
				}
				printRuns(cmd, args[0], runs, record)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Record a run with per-item move history")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes to attach to the recorded run")
	return cmd
}

func newRebinScopeCommand(ctx *commandContext) *cobra.Command {
	var bucketCode string
	var record bool
	var notes string

	cmd := &cobra.Command{
		Use:   "scope CODE",
		Short: "Rebin one (zone, bucket) scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				run, err := app.binning.RebinScope(cmd.Context(), args[0], bucketCode, record, notes)
				if err != nil {
					return err
				}
				var runs []*catalog.RebinRun
				if run != nil {
					runs = append(runs, run)
				}
				printRuns(cmd, args[0], runs, record)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bucketCode, "bucket", "", "Bucket code (omit for the bucketless scope)")
	cmd.Flags().BoolVar(&record, "record", false, "Record a run with per-item move history")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes to attach to the recorded run")
	return cmd
}

func printRuns(cmd *cobra.Command, zoneCode string, runs []*catalog.RebinRun, recorded bool) {
	if !recorded {
		fmt.Fprintf(cmd.OutOrStdout(), "Rebinned %s.\n", zoneCode)
		return
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Rebinned %s; nothing moved.\n", zoneCode)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rebinned %s; recorded %d run(s):\n", zoneCode, len(runs))
	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", run.ID)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Use `platter moves list --run ID` or `platter tasklist --run ID` to review.")
}

func newRecalcCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalc ITEM...",
		Short: "Recompute placement for selected items and log the shifts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				itemIDs, err := parseItemIDs(args)
				if err != nil {
					return err
				}
				result, err := app.binning.RecalculatePlacement(cmd.Context(), itemIDs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recalculated %d item(s); %d changed bins.\n", result.Selected, result.Updated)
				for _, runID := range result.RunIDs {
					fmt.Fprintf(cmd.OutOrStdout(), "  run %s\n", runID)
				}
				return nil
			})
		},
	}
	return cmd
}

func newReclassifyCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var zoneOverride string
	var clearOverride bool

	cmd := &cobra.Command{
		Use:   "reclassify ITEM...",
		Short: "Change media type or zone override for many items at once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				itemIDs, err := parseItemIDs(args)
				if err != nil {
					return err
				}
				result, err := app.binning.BulkReclassify(cmd.Context(), api.ReclassifyRequest{
					ItemIDs:       itemIDs,
					MediaTypeName: mediaType,
					ZoneOverride:  zoneOverride,
					ClearOverride: clearOverride,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reclassified %d of %d item(s); affected scopes rebinned.\n", result.Updated, result.Selected)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mediaType, "media-type", "", "New media type name")
	cmd.Flags().StringVar(&zoneOverride, "zone-override", "", "Pin items to this zone regardless of media type")
	cmd.Flags().BoolVar(&clearOverride, "clear-override", false, "Remove any zone override")
	return cmd
}

func parseItemIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
