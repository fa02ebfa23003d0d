package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rpggio/eventsadmin/internal/console"
	"github.com/rpggio/eventsadmin/internal/domain/event"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var criteria event.FilterCriteria

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List page 1 of events for the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog := ctx.logger(cmd.ErrOrStderr())
			defer closeLog()

			if !cmd.Flags().Changed("city") {
				criteria.City = event.DefaultCriteria(cfg.Console.City).City
			}

			review := newReviewConsole(cfg, "", logger)
			review.SetCriteria(criteria)
			review.LoadEvents(cmd.Context())

			writeEventsTable(cmd.OutOrStdout(), review.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.City, "city", "", "City filter")
	cmd.Flags().StringVar(&criteria.Q, "q", "", "Keyword filter")
	cmd.Flags().StringVar(&criteria.FromDate, "from", "", "Earliest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteria.ToDate, "to", "", "Latest start date (YYYY-MM-DD)")
	return cmd
}

func writeEventsTable(w io.Writer, snap console.Snapshot) {
	if len(snap.Rows) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	rows := make([][]string, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		rows = append(rows, []string{r.ID, r.Title, r.When, r.Venue, r.Source, r.Status})
	}
	fmt.Fprint(w, renderTable(
		[]string{"ID", "Title", "When", "Venue", "Source", "Status"},
		rows,
		[]columnAlignment{alignRight},
	))
}
