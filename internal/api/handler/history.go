package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/MNehlan/ParkX/internal/domain"

	"github.com/gin-gonic/gin"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// parseHistoryFilter reads the range selector from the query string:
// ?range=today|week|month|all|custom, with start/end (YYYY-MM-DD, end
// inclusive) required for custom.
func parseHistoryFilter(c *gin.Context) (domain.HistoryFilter, error) {
	filter := domain.HistoryFilter{Range: domain.HistoryRange(c.DefaultQuery("range", string(domain.RangeToday)))}

	switch filter.Range {
	case domain.RangeToday, domain.RangeWeek, domain.RangeMonth, domain.RangeAll:
		return filter, nil
	case domain.RangeCustom:
		start, err := time.ParseInLocation("2006-01-02", c.Query("start"), time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid start date: %q", c.Query("start"))
		}
		end, err := time.ParseInLocation("2006-01-02", c.Query("end"), time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid end date: %q", c.Query("end"))
		}
		filter.CustomStart = start
		filter.CustomEnd = end
		return filter, nil
	default:
		return filter, fmt.Errorf("invalid range: %q", filter.Range)
	}
}

func sessionCSVRow(s domain.VehicleSession) []string {
	duration := ""
	if s.DurationHours.Valid {
		duration = fmt.Sprintf("%d", s.DurationHours.Int64)
	}
	fee := ""
	if s.Fee.Valid {
		fee = fmt.Sprintf("%g", s.Fee.Float64)
	}
	exitTime := ""
	if s.ExitTime.Valid {
		exitTime = s.ExitTime.Time.Local().Format(csvTimeLayout)
	}
	return []string{
		s.VehicleNumber,
		s.VehicleType,
		duration,
		fee,
		s.EntryTime.Local().Format(csvTimeLayout),
		exitTime,
	}
}

// writeHistoryCSV streams the export as a CSV attachment.
func writeHistoryCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}
