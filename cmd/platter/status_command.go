package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"platter/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals and the most recent rebin run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(app *appServices) error {
				status, err := app.reports.Status(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}
				rows := [][]string{
					{"Items", fmt.Sprintf("%d", status.Items)},
					{"Artists", fmt.Sprintf("%d", status.Artists)},
					{"Zones", fmt.Sprintf("%d", status.Zones)},
					{"Unassigned items", fmt.Sprintf("%d", status.Unassigned)},
				}
				if status.LastRun != nil {
					rows = append(rows,
						[]string{"Last run", status.LastRun.ID},
						[]string{"Last run moves", fmt.Sprintf("%d", status.LastRun.MoveCount)},
					)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"FIELD", "VALUE"}, rows, []columnAlignment{alignLeft, alignRight}))

				checks := preflight.RunAll(app.cfg)
				checkRows := make([][]string, 0, len(checks))
				for _, check := range checks {
					state := "ok"
					if !check.Passed {
						state = "FAIL"
					}
					checkRows = append(checkRows, []string{check.Name, state, check.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"CHECK", "STATE", "DETAIL"},
					checkRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
