package report

import (
	"math"
	"strconv"
	"strings"

	"shopledger/backend/internal/domain"
)

// ChartFields are the record fields charted on the dashboard, one ChartData
// per field.
var ChartFields = []string{"totalSale", "posSale", "cash", "upi", "card", "cashGiven", "remaining"}

func fieldValue(rec domain.DailyShopRecord, field string) float64 {
	switch field {
	case "totalSale":
		return rec.TotalSale
	case "posSale":
		return rec.PosSale
	case "cash":
		return rec.Cash
	case "upi":
		return rec.UPI
	case "card":
		return rec.Card
	case "cashGiven":
		return rec.CashGiven
	case "remaining":
		return rec.Remaining
	}
	return 0
}

// BuildChartData turns a flat record list into one chart payload for a field.
// Categories are the distinct record dates in first-seen order; since callers
// assemble records by walking the range chronologically, that order is
// chronological. Each canonical shop gets one series aligned with the
// categories, with 0 for missing (date, shop) combinations.
func BuildChartData(records []domain.DailyShopRecord, field string) domain.ChartData {
	categories := make([]string, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if _, seen := index[rec.Date]; seen {
			continue
		}
		index[rec.Date] = len(categories)
		categories = append(categories, rec.Date)
	}

	series := make([]domain.ChartSeries, 0, len(domain.ShopNames))
	for _, shop := range domain.ShopNames {
		data := make([]float64, len(categories))
		for _, rec := range records {
			if rec.ShopName != shop {
				continue
			}
			data[index[rec.Date]] += fieldValue(rec, field)
		}
		series = append(series, domain.ChartSeries{Name: shop, Data: data})
	}

	return domain.ChartData{Categories: categories, Series: series}
}

// PercentageChange returns 0 when there is no previous value to compare
// against, avoiding a divide-by-zero blowup on quiet days.
func PercentageChange(current float64, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// FormatIndian renders a number with Indian digit grouping: the last three
// integer digits, then groups of two ("12,34,567"). Non-finite values render
// as "0"; any decimal part is appended verbatim.
func FormatIndian(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}

	raw := strconv.FormatFloat(value, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}

	integer := raw
	decimal := ""
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		integer = raw[:idx]
		decimal = raw[idx:]
	}

	if len(integer) <= 3 {
		return sign + integer + decimal
	}

	head := integer[:len(integer)-3]
	tail := integer[len(integer)-3:]
	groups := make([]string, 0, len(head)/2+1)
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return sign + strings.Join(groups, ",") + "," + tail + decimal
}

// SpendSeries sums spend prices per day over the given day keys and returns
// the zero-filled series plus the overall total.
func SpendSeries(days []string, spends []domain.SpendEntry) ([]float64, float64) {
	index := make(map[string]int, len(days))
	for i, day := range days {
		index[day] = i
	}

	data := make([]float64, len(days))
	total := 0.0
	for _, spend := range spends {
		pos, ok := index[spend.Date]
		if !ok {
			continue
		}
		data[pos] += spend.Price
		total += spend.Price
	}
	return data, total
}
