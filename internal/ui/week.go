package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/hourly/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var offset int
	var copyText bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week's availability",
		Long: `Display the slots of one week grouped by day, with booked hours and the
weekly total against the minimum.

Use --offset to look at other weeks: -1 is last week, 1 is next week.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			if err := session.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("loading slots: %w", err)
			}
			session.SetWeekOffset(offset)

			ws := summary.SummarizeWeek(session.Week(), session.Snapshot(), session.MinWeeklySlots())
			printWeek(a.out, ws)

			if copyText {
				if err := clipboard.WriteAll(ws.Text()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(a.out, formatMuted("  Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset from the current week")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the summary to the clipboard")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// printWeek writes the week summary as a colored table.
func printWeek(w io.Writer, ws *summary.WeekSummary) {
	rule := strings.Repeat("─", min(termWidth(), 74))

	header := fmt.Sprintf("WEEK: %s - %s", ws.Start.Format("Mon Jan 2"), ws.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, rule)

	for _, d := range ws.Days {
		label := fmt.Sprintf("%-10s", d.Day.Date.Format("Mon Jan 2"))
		if len(d.Ranges) == 0 {
			fmt.Fprintf(w, "  %s  %s\n", formatHeader(label), formatMuted("-"))
			continue
		}
		parts := make([]string, len(d.Ranges))
		for i, r := range d.Ranges {
			parts[i] = formatAvailable(r.String())
		}
		line := fmt.Sprintf("  %s  %s  %s", formatHeader(label), strings.Join(parts, ", "), formatMuted(fmt.Sprintf("(%d)", d.Slots)))
		if len(d.Booked) > 0 {
			booked := make([]string, len(d.Booked))
			for i, h := range d.Booked {
				booked[i] = h.Label()
			}
			line += "  " + formatBooked("booked "+strings.Join(booked, ", "))
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, rule)
	total := fmt.Sprintf("Total: %d slots, %d booked", ws.Total, ws.Booked)
	if ws.Floor > 0 {
		total += fmt.Sprintf(" / min %d", ws.Floor)
	}
	if ws.BelowFloor() {
		total = formatWarning(total + fmt.Sprintf(" (%d short)", ws.Floor-ws.Total))
	} else {
		total = formatStats(total)
	}
	fmt.Fprintf(w, "  %s\n\n", total)
}
