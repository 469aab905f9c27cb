package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hourly/internal/export"
)

func (a *App) exportCmd() *cobra.Command {
	var offset int
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the week's availability to a spreadsheet",
		Long: `Write one week of availability to an .xlsx workbook, one row per hour
and one column per day.

Example:
  hourly export --offset 1 --out next-week.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			if err := session.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("loading slots: %w", err)
			}
			session.SetWeekOffset(offset)

			week := session.Week()
			if out == "" {
				out = export.Filename(week)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.Write(f, week, session.Hours(), session.Snapshot()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}

			fmt.Fprintf(a.out, "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset from the current week")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default availability_<monday>.xlsx)")
	return cmd
}
