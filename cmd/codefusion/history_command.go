package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions and reviews handled by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			entries, err := client.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				outcome := e.Outcome
				if e.Error != "" {
					outcome += ": " + e.Error
				}
				rows = append(rows, []string{
					e.CreatedAt.Local().Format(time.DateTime),
					e.Flow,
					e.SourceLanguage,
					e.TargetLanguage,
					strconv.Itoa(e.CodeLength),
					outcome,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Flow", "From", "To", "Size", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
