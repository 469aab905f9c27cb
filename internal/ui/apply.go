package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/reconcile"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/slot"
)

func (a *App) applyCmd() *cobra.Command {
	var (
		day     string
		from    string
		to      string
		offset  int
		fullDay bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Toggle a range of hours and commit",
		Long: `Mark the hours of one day and commit them, as a drag over the calendar would.

Empty hours become slots and open slots are removed. Booked hours are left
alone. The commit is refused if the week would end up below the minimum.

Examples:
  hourly apply --day sat --from 09:00 --to 12:00
  hourly apply --day monday --full-day --offset 1
  hourly apply --day fri --from 14:00 --to 16:00 --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !fullDay && (from == "" || to == "") {
				return errors.New("--from and --to are required unless --full-day is set")
			}
			wd, err := dateutil.ParseWeekday(day)
			if err != nil {
				return fmt.Errorf("--day %q: %w", day, err)
			}
			dayIdx := dateutil.MondayIndex(wd)

			session, err := a.session()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := session.Reload(ctx); err != nil {
				return fmt.Errorf("loading slots: %w", err)
			}
			session.SetWeekOffset(offset)

			if fullDay {
				err = session.ToggleDay(dayIdx)
			} else {
				err = selectHours(session, dayIdx, from, to)
			}
			if err != nil {
				return err
			}

			plan, err := session.Prepare()
			printPlan(a.out, session, plan)
			if err != nil || dryRun {
				return err
			}

			res, err := session.Commit(ctx)
			if res.Applied() || err == nil {
				fmt.Fprintln(a.out, formatStats(fmt.Sprintf("  Created %d, deleted %d", res.Created, res.Deleted)))
			}
			if res.ReloadErr != nil {
				fmt.Fprintln(a.out, formatWarning(fmt.Sprintf("  Reload failed: %v", res.ReloadErr)))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Weekday, e.g. mon or monday")
	cmd.Flags().StringVar(&from, "from", "", "First hour, e.g. 09:00")
	cmd.Flags().StringVar(&to, "to", "", "End hour (exclusive), e.g. 12:00")
	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset from the current week")
	cmd.Flags().BoolVar(&fullDay, "full-day", false, "Toggle every free hour of the day")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the changes without committing")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}

// selectHours drags over from..to (exclusive) on one day.
func selectHours(session *schedule.Session, day int, from, to string) error {
	hours, err := slot.Range(from, to)
	if err != nil {
		return err
	}
	first, err := session.RowOf(hours[0])
	if err != nil {
		return err
	}
	last, err := session.RowOf(hours[len(hours)-1])
	if err != nil {
		return err
	}
	if err := session.SelectRange(day, first, last); err != nil {
		return fmt.Errorf("%s %s: %w", from, to, err)
	}
	return nil
}

// printPlan lists the slots a plan creates and removes.
func printPlan(w io.Writer, session *schedule.Session, plan reconcile.Plan) {
	snap := session.Snapshot()
	for _, d := range plan.ToCreate {
		fmt.Fprintf(w, "  %s %s\n", formatAvailable("+"), d.Start.Format("Mon Jan 2 15:04"))
	}
	for _, id := range plan.ToDelete {
		if s, ok := snap.SlotByID(id); ok {
			fmt.Fprintf(w, "  %s %s\n", formatBooked("-"), s.Start.Format("Mon Jan 2 15:04"))
		}
	}
	if n := len(plan.Skipped); n > 0 {
		fmt.Fprintln(w, formatMuted(fmt.Sprintf("  %d booked hour(s) skipped", n)))
	}
}
