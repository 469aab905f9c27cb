// Package export renders a consultant's week as an xlsx workbook.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/slot"
)

// ErrNoHours is returned when the grid has no visible hours.
var ErrNoHours = errors.New("no hours to export")

// SheetName is the name of the single sheet in the workbook.
const SheetName = "Availability"

// Cell texts.
const (
	TextAvailable = "available"
	TextBooked    = "booked"
	TextEmpty     = "-"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Week builds the workbook for one projected week: a title row, a header row
// with the seven days, then one row per hour.
func Week(week calendar.Week, hours []slot.Hour, snap slot.Snapshot) (*excelize.File, error) {
	if len(hours) == 0 {
		return nil, ErrNoHours
	}

	f := excelize.NewFile()
	idx, err := f.NewSheet(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	if err := fill(f, week, hours, snap); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Write renders the week and writes the workbook to w.
func Write(w io.Writer, week calendar.Week, hours []slot.Hour, snap slot.Snapshot) error {
	f, err := Week(week, hours, snap)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Buffer renders the week into memory.
func Buffer(week calendar.Week, hours []slot.Hour, snap slot.Snapshot) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := Write(buf, week, hours, snap); err != nil {
		return nil, err
	}
	return buf, nil
}

// Filename suggests a file name for the week, e.g. "availability_2024-06-10.xlsx".
func Filename(week calendar.Week) string {
	return fmt.Sprintf("availability_%s.xlsx", week.Monday().Format("2006-01-02"))
}

// CellText is the text written for one grid cell.
func CellText(day calendar.Day, hour slot.Hour, snap slot.Snapshot) string {
	if a, ok := calendar.FindAppointment(day, hour, snap.Appointments); ok && a.Status != slot.AppointmentCanceled {
		if a.CustomerID != "" {
			return TextBooked + " (" + a.CustomerID + ")"
		}
		return TextBooked
	}
	if s, ok := calendar.FindSlot(day, hour, snap.Slots); ok {
		if s.IsBooked() {
			return TextBooked
		}
		return TextAvailable
	}
	return TextEmpty
}

func fill(f *excelize.File, week calendar.Week, hours []slot.Hour, snap slot.Snapshot) error {
	lastCol := colName(calendar.DaysPerWeek)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#8CAAEE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	availableStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#A6D189"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating available style: %w", err)
	}
	bookedStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E78284"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating booked style: %w", err)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", lastCol, 18)

	start, end := week.Bounds()
	title := fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.AddDate(0, 0, -1).Format("Jan 2, 2006"))
	if snap.ConsultantID != "" {
		title = snap.ConsultantID + ": " + title
	}
	_ = f.SetCellValue(SheetName, "A1", title)
	_ = f.MergeCell(SheetName, "A1", cell(lastCol, 1))
	_ = f.SetCellStyle(SheetName, "A1", "A1", headerStyle)

	_ = f.SetCellValue(SheetName, "A2", "Hour")
	for i, day := range week {
		_ = f.SetCellValue(SheetName, cell(colName(i+1), 2), fmt.Sprintf("%s %s", day.ShortName(), day.Date.Format("01/02")))
	}
	_ = f.SetCellStyle(SheetName, "A2", cell(lastCol, 2), headerStyle)

	for r, hour := range hours {
		row := r + 3
		_ = f.SetCellValue(SheetName, cell("A", row), hour.Label())
		for i, day := range week {
			ref := cell(colName(i+1), row)
			text := CellText(day, hour, snap)
			if err := f.SetCellValue(SheetName, ref, text); err != nil {
				return fmt.Errorf("writing %s: %w", ref, err)
			}
			switch text {
			case TextEmpty:
			case TextAvailable:
				_ = f.SetCellStyle(SheetName, ref, ref, availableStyle)
			default:
				_ = f.SetCellStyle(SheetName, ref, ref, bookedStyle)
			}
		}
	}
	return nil
}

// colName returns the column letter for a zero-based index.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
