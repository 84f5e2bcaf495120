// Package reports renders booking data as Excel workbooks for the staff
// back office.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// sheetWriter wraps excelize with a cursor so callers append rows without
// tracking coordinates.
type sheetWriter struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

func newSheetWriter(sheet string) (*sheetWriter, error) {
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	return &sheetWriter{file: f, sheet: sheet, currentRow: 1}, nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, col); err != nil {
			return err
		}
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) writeRow(row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

var bookingColumns = []string{
	"Booking ID", "Table ID", "Customer", "Mobile", "Guests",
	"Type", "Status", "Confirmation", "Start", "Duration (min)", "Created",
}

// WriteBookingsReport renders a single-sheet workbook of the given bookings.
// The sheet is named after the report date.
func WriteBookingsReport(out io.Writer, date string, bookings []models.Booking) error {
	w, err := newSheetWriter("Bookings " + date)
	if err != nil {
		return err
	}
	if err := w.writeHeader(bookingColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range bookings {
		b := &bookings[i]
		row := []interface{}{
			b.ID,
			b.TableID,
			b.CustomerName,
			b.Mobile,
			b.PeopleCount,
			string(b.BookingType),
			string(b.Status),
			string(b.ConfirmationStatus),
			b.StartTime().Format(time.RFC3339),
			b.DurationMinutes,
			b.CreatedAt.Format(time.RFC3339),
		}
		if err := w.writeRow(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return w.file.Write(out)
}
