package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"liner/internal/identity"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit trail of identity mutations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *identity.Store) error {
				events, err := store.ListEvents(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, events)
				}

				rows := make([][]string, 0, len(events))
				for _, e := range events {
					rows = append(rows, []string{
						e.OccurredAt.Format(time.RFC3339),
						string(e.Operation),
						idCell(e.SourceIdentityID),
						idCell(e.TargetIdentityID),
						idCell(e.NameID),
						e.Detail,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"When", "Operation", "Source", "Target", "Name", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum events to show (0 for all)")
	return cmd
}

func idCell(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}
