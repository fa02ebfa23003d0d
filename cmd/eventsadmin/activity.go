package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/eventsadmin/internal/domain/activity"
)

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var opts activity.ListOptions
	var outcome string

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent import activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog := ctx.logger(cmd.ErrOrStderr())
			defer closeLog()

			if outcome != "" {
				o := activity.Outcome(outcome)
				opts.Outcome = &o
			}

			return ctx.withStore(logger, func(s *store) error {
				entries, err := s.activity.RecentImports(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No import activity")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					notes := ""
					if e.Notes != nil {
						notes = *e.Notes
					}
					rows = append(rows, []string{
						e.CreatedAt.Local().Format(time.DateTime),
						e.EventID,
						e.Operator,
						strconv.Itoa(e.StatusCode),
						string(e.Outcome),
						notes,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"When", "Event", "Operator", "Status", "Outcome", "Notes"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum entries to show")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "Only entries for this event id")
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "Only entries by this operator email")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only entries with this outcome (imported, rejected, bad_gateway)")
	return cmd
}
