// Package dateutil handles the DD-MM-YYYY ledger day format and IST
// wall-clock time. All submission timestamps and day keys are IST.
package dateutil

import (
	"fmt"
	"time"
)

const (
	DayLayout       = "02-01-2006"
	MonthLayout     = "01-2006"
	TimestampLayout = "02-01-2006 15:04:05"
)

// maxRangeDays bounds report range fan-out.
const maxRangeDays = 366

// IST is Indian Standard Time (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// Timestamp formats the current IST time as "DD-MM-YYYY HH:mm:ss".
func Timestamp() string {
	return Now().Format(TimestampLayout)
}

// ParseDay parses a DD-MM-YYYY day key in IST.
func ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, value, IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD-MM-YYYY", value)
	}
	return t, nil
}

// FormatDay renders a time as its DD-MM-YYYY day key in IST.
func FormatDay(t time.Time) string {
	return t.In(IST).Format(DayLayout)
}

// Today returns the current IST day key. Yesterday and DayBeforeYesterday
// anchor the daily comparison card.
func Today() string {
	return FormatDay(Now())
}

func Yesterday() string {
	return FormatDay(Now().AddDate(0, 0, -1))
}

func DayBeforeYesterday() string {
	return FormatDay(Now().AddDate(0, 0, -2))
}

// DayRange returns every day key from from to to inclusive, in chronological
// order. The range is rejected when reversed or longer than a year.
func DayRange(from string, to string) ([]string, error) {
	start, err := ParseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDay(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("date range is reversed: %s is after %s", from, to)
	}

	days := make([]string, 0, 8)
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, FormatDay(cursor))
		if len(days) > maxRangeDays {
			return nil, fmt.Errorf("date range exceeds %d days", maxRangeDays)
		}
	}
	return days, nil
}

// MonthDays returns every day key of an MM-YYYY month in order.
func MonthDays(month string) ([]string, error) {
	start, err := time.ParseInLocation(MonthLayout, month, IST)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q, expected MM-YYYY", month)
	}
	end := start.AddDate(0, 1, 0)

	days := make([]string, 0, 31)
	for cursor := start; cursor.Before(end); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, FormatDay(cursor))
	}
	return days, nil
}
