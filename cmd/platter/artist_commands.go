package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"platter/internal/catalog"
)

func newArtistCommand(ctx *commandContext) *cobra.Command {
	artistCmd := &cobra.Command{
		Use:   "artist",
		Short: "Manage artists",
	}

	artistCmd.AddCommand(newArtistAddCommand(ctx))
	artistCmd.AddCommand(newArtistListCommand(ctx))
	artistCmd.AddCommand(newArtistRefileCommand(ctx))
	return artistCmd
}

func newArtistAddCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var first string
	var last string
	var suffix string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a band, or a person with --last",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				artist := &catalog.Artist{
					Kind:        catalog.ArtistKind(kind),
					NamePrimary: args[0],
				}
				if last != "" || first != "" {
					artist.Kind = catalog.ArtistPerson
					if first == "" {
						first = args[0]
					}
					artist.NamePrimary = first
					artist.NameSecondary = last
					artist.NameSuffix = suffix
				}
				saved, err := app.catalog.SaveArtist(cmd.Context(), artist)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created artist %d: %s (files as %q)\n", saved.ID, saved.DisplayName, saved.SortName)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "BAND", "Artist kind (BAND or PERSON)")
	cmd.Flags().StringVar(&first, "first", "", "Person first name (defaults to NAME)")
	cmd.Flags().StringVar(&last, "last", "", "Person last name; implies a PERSON artist")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Person name suffix (Jr, III, ...)")
	return cmd
}

func newArtistListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artists in filing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				artists, err := app.store.ListArtists(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, artists)
				}
				rows := make([][]string, 0, len(artists))
				for _, a := range artists {
					filed := ""
					if a.FiledUnderID != nil {
						filed = strconv.FormatInt(*a.FiledUnderID, 10)
					}
					rows = append(rows, []string{
						strconv.FormatInt(a.ID, 10),
						string(a.Kind),
						a.DisplayName,
						a.SortName,
						a.AlphaBucket,
						filed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "KIND", "NAME", "SORT NAME", "BUCKET", "FILED UNDER"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newArtistRefileCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "refile ARTIST [TARGET]",
		Short: "File an artist under another artist (or clear with --clear)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				artistID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid artist id %q", args[0])
				}
				artist, err := app.store.GetArtist(cmd.Context(), artistID)
				if err != nil {
					return err
				}
				if artist == nil {
					return fmt.Errorf("artist %d not found", artistID)
				}

				switch {
				case clear:
					artist.FiledUnderID = nil
				case len(args) == 2:
					targetID, err := strconv.ParseInt(args[1], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid target artist id %q", args[1])
					}
					artist.FiledUnderID = &targetID
				default:
					return fmt.Errorf("a target artist id or --clear is required")
				}

				saved, err := app.catalog.SaveArtist(cmd.Context(), artist)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Artist %d now files as %q\n", saved.ID, saved.SortName)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the filed-under reference")
	return cmd
}
