package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"platter/internal/api"
	"platter/internal/catalog"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage media items",
	}

	itemCmd.AddCommand(newItemAddCommand(ctx))
	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemSetCommand(ctx))
	return itemCmd
}

func newItemAddCommand(ctx *commandContext) *cobra.Command {
	var artistID int64
	var mediaType string
	var bucketCode string
	var masterKey string
	var owner string
	var year int
	var speed int
	var notes string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a media item; placement runs automatically after commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				mt, err := app.store.GetMediaTypeByName(cmd.Context(), mediaType)
				if err != nil {
					return err
				}
				if mt == nil {
					return fmt.Errorf("unknown media type %q (run `platter seed reference`?)", mediaType)
				}

				item := &catalog.MediaItem{
					Title:       args[0],
					ArtistID:    artistID,
					MediaTypeID: mt.ID,
					MasterKey:   masterKey,
					Owner:       catalog.Owner(owner),
					Notes:       notes,
				}
				if item.Owner == "" {
					item.Owner = catalog.Owner(app.cfg.Library.DefaultOwner)
				}
				if year > 0 {
					item.ReleaseYear = &year
				}
				if speed > 0 {
					item.SpeedRPM = &speed
				}
				if bucketCode != "" {
					bucket, err := app.store.GetBucketByCode(cmd.Context(), bucketCode)
					if err != nil {
						return err
					}
					if bucket == nil {
						return fmt.Errorf("unknown bucket %q", bucketCode)
					}
					item.BucketID = &bucket.ID
				}

				created, err := app.catalog.CreateItem(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created item %d: %s\n", created.ID, created.Title)
				printPlacement(cmd, app, created.ID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&artistID, "artist", 0, "Artist id (required)")
	cmd.Flags().StringVar(&mediaType, "media-type", "Standard LP", "Media type name")
	cmd.Flags().StringVar(&bucketCode, "bucket", "", "Sort bucket code")
	cmd.Flags().StringVar(&masterKey, "master-key", "", "Legacy master key")
	cmd.Flags().StringVar(&owner, "owner", "", "Collection owner (default from config)")
	cmd.Flags().IntVar(&year, "year", 0, "Release year")
	cmd.Flags().IntVar(&speed, "speed", 0, "Playback speed in RPM")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("artist")
	return cmd
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var zoneCode string
	var bucketCode string
	var unassigned bool
	var tagSlug string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in filing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				filter := catalog.ItemFilter{Unassigned: unassigned, TagSlug: tagSlug}
				if zoneCode != "" {
					zone, err := app.store.GetZoneByCode(cmd.Context(), zoneCode)
					if err != nil {
						return err
					}
					if zone == nil {
						return fmt.Errorf("unknown zone %q", zoneCode)
					}
					filter.ZoneID = zone.ID
				}
				if bucketCode != "" {
					bucket, err := app.store.GetBucketByCode(cmd.Context(), bucketCode)
					if err != nil {
						return err
					}
					if bucket == nil {
						return fmt.Errorf("unknown bucket %q", bucketCode)
					}
					filter.BucketID = bucket.ID
				}

				items, err := app.store.ListItems(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.FromItems(items))
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					bin := ""
					if item.LogicalBinID != nil {
						label, err := app.store.PhysicalLabelForLogical(cmd.Context(), *item.LogicalBinID)
						if err != nil {
							return err
						}
						bin = label
					}
					year := ""
					if item.ReleaseYear != nil {
						year = strconv.Itoa(*item.ReleaseYear)
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.ArtistSortName,
						item.Title,
						year,
						bin,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "ARTIST", "TITLE", "YEAR", "BIN"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&zoneCode, "zone", "", "Filter by effective zone code")
	cmd.Flags().StringVar(&bucketCode, "bucket", "", "Filter by sort bucket code")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "Only items with no logical bin")
	cmd.Flags().StringVar(&tagSlug, "tag", "", "Filter by tag slug")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show ITEM",
		Short: "Show one item with its computed placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				item, err := app.store.GetItem(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}
				placement, err := app.binning.AssignItem(cmd.Context(), id, false)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"item":      api.FromItem(item),
						"placement": placement,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item %d: %s / %s\n", item.ID, item.ArtistDisplayName, item.Title)
				fmt.Fprintf(out, "Filed as:  %s\n", item.ArtistSortName)
				if item.MasterKey != "" {
					fmt.Fprintf(out, "Master key: %s\n", item.MasterKey)
				}
				fmt.Fprintf(out, "Placement: %s\n", placement.Reason)
				if placement.PhysicalLabel != "" {
					fmt.Fprintf(out, "Location:  %s\n", placement.PhysicalLabel)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newItemSetCommand(ctx *commandContext) *cobra.Command {
	var bucketCode string
	var clearBucket bool
	var mediaType string
	var zoneOverride string
	var clearOverride bool
	var notes string

	cmd := &cobra.Command{
		Use:   "set ITEM",
		Short: "Update item classification; affected scopes rebin automatically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				item, err := app.store.GetItem(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}

				if bucketCode != "" {
					bucket, err := app.store.GetBucketByCode(cmd.Context(), bucketCode)
					if err != nil {
						return err
					}
					if bucket == nil {
						return fmt.Errorf("unknown bucket %q", bucketCode)
					}
					item.BucketID = &bucket.ID
				}
				if clearBucket {
					item.BucketID = nil
				}
				if mediaType != "" {
					mt, err := app.store.GetMediaTypeByName(cmd.Context(), mediaType)
					if err != nil {
						return err
					}
					if mt == nil {
						return fmt.Errorf("unknown media type %q", mediaType)
					}
					item.MediaTypeID = mt.ID
				}
				if zoneOverride != "" {
					zone, err := app.store.GetZoneByCode(cmd.Context(), zoneOverride)
					if err != nil {
						return err
					}
					if zone == nil {
						return fmt.Errorf("unknown zone %q", zoneOverride)
					}
					item.ZoneOverrideID = &zone.ID
				}
				if clearOverride {
					item.ZoneOverrideID = nil
				}
				if cmd.Flags().Changed("notes") {
					item.Notes = notes
				}

				updated, err := app.catalog.UpdateItem(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated item %d\n", updated.ID)
				printPlacement(cmd, app, updated.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bucketCode, "bucket", "", "Sort bucket code")
	cmd.Flags().BoolVar(&clearBucket, "clear-bucket", false, "Remove the bucket classification")
	cmd.Flags().StringVar(&mediaType, "media-type", "", "Media type name")
	cmd.Flags().StringVar(&zoneOverride, "zone-override", "", "Zone override code")
	cmd.Flags().BoolVar(&clearOverride, "clear-override", false, "Remove the zone override")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func printPlacement(cmd *cobra.Command, app *appServices, itemID int64) {
	item, err := app.store.GetItem(cmd.Context(), itemID)
	if err != nil || item == nil {
		return
	}
	if item.LogicalBinID == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Placement: unassigned")
		return
	}
	label, err := app.store.PhysicalLabelForLogical(cmd.Context(), *item.LogicalBinID)
	if err != nil || label == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Placement: logical bin %d\n", *item.LogicalBinID)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Placement: %s\n", label)
}
