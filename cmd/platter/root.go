package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "platter",
		Short:         "Platter record catalog CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newArtistCommand(ctx))
	rootCmd.AddCommand(newItemCommand(ctx))
	rootCmd.AddCommand(newZoneCommand(ctx))
	rootCmd.AddCommand(newBucketCommand(ctx))
	rootCmd.AddCommand(newBinCommand(ctx))
	rootCmd.AddCommand(newRangeCommand(ctx))
	rootCmd.AddCommand(newAssignCommand(ctx))
	rootCmd.AddCommand(newRebinCommand(ctx))
	rootCmd.AddCommand(newRecalcCommand(ctx))
	rootCmd.AddCommand(newReclassifyCommand(ctx))
	rootCmd.AddCommand(newTaskListCommand(ctx))
	rootCmd.AddCommand(newMovesCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newReportCommand(ctx))

	return rootCmd
}
