package attendance

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Attendance"

var exportHeaders = []string{
	"Shift Date", "Name", "Email", "Check In", "Check Out", "Duration", "Status", "Notes",
}

// Export renders the admin list (optionally for one date) as an XLSX
// workbook. Times are written in the calendar's timezone.
func (s *service) Export(ctx context.Context, date string) ([]byte, error) {
	filter := ListFilter{}
	if date != "" {
		d, err := parseShiftDate(date)
		if err != nil {
			return nil, err
		}
		filter.ShiftDate = &d
	}

	rows, _, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, headerStyle)
	}

	now := s.clock.Now()
	loc := s.calendar.Location()
	for r, row := range rows {
		resp := s.toAdminResponse(row, now)

		checkOut := ""
		if row.CheckOutTime != nil {
			checkOut = row.CheckOutTime.In(loc).Format("2006-01-02 15:04:05")
		}
		notes := ""
		if row.Notes != nil {
			notes = *row.Notes
		}

		values := []any{
			resp.ShiftDate,
			resp.UserName,
			resp.UserEmail,
			row.CheckInTime.In(loc).Format("2006-01-02 15:04:05"),
			checkOut,
			resp.Elapsed,
			string(resp.Status),
			notes,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "H", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Debug("attendance export rendered", zap.Int("rows", len(rows)), zap.String("date", date))
	return buf.Bytes(), nil
}
