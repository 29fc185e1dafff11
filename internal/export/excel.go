// Package export renders a range report as an xlsx workbook for download.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"shopledger/backend/internal/domain"
)

const sheetName = "Report"

// columns fixes the workbook column order.
var columns = []struct {
	header string
	width  float64
	value  func(rec domain.DailyShopRecord) any
}{
	{"Date", 13, func(rec domain.DailyShopRecord) any { return rec.Date }},
	{"Shop", 26, func(rec domain.DailyShopRecord) any { return rec.ShopName }},
	{"POS Sale", 12, func(rec domain.DailyShopRecord) any { return rec.PosSale }},
	{"UPI", 12, func(rec domain.DailyShopRecord) any { return rec.UPI }},
	{"Card", 12, func(rec domain.DailyShopRecord) any { return rec.Card }},
	{"Cash Given", 12, func(rec domain.DailyShopRecord) any { return rec.CashGiven }},
	{"Remaining", 12, func(rec domain.DailyShopRecord) any { return rec.Remaining }},
	{"Cash", 12, func(rec domain.DailyShopRecord) any { return rec.Cash }},
	{"Total Sale", 13, func(rec domain.DailyShopRecord) any { return rec.TotalSale }},
	{"Submitted By", 26, func(rec domain.DailyShopRecord) any { return rec.SubmittedBy }},
	{"Submitted At", 21, func(rec domain.DailyShopRecord) any { return rec.SubmissionDate }},
}

// totalled marks the numeric columns summed into the totals row, by index.
var totalled = map[int]func(rec domain.DailyShopRecord) float64{
	2: func(rec domain.DailyShopRecord) float64 { return rec.PosSale },
	3: func(rec domain.DailyShopRecord) float64 { return rec.UPI },
	4: func(rec domain.DailyShopRecord) float64 { return rec.Card },
	5: func(rec domain.DailyShopRecord) float64 { return rec.CashGiven },
	6: func(rec domain.DailyShopRecord) float64 { return rec.Remaining },
	7: func(rec domain.DailyShopRecord) float64 { return rec.Cash },
	8: func(rec domain.DailyShopRecord) float64 { return rec.TotalSale },
}

// RangeWorkbook builds the export workbook: one styled header row, one row
// per record and a totals row over the numeric columns.
func RangeWorkbook(records []domain.DailyShopRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "C00000"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFFE0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, column.header); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, column.width); err != nil {
			return nil, err
		}
	}

	lastColumn, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastColumn+"1", headerStyle); err != nil {
		return nil, err
	}

	totals := make(map[int]float64, len(totalled))
	for rowIdx, rec := range records {
		for colIdx, column := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, column.value(rec)); err != nil {
				return nil, err
			}
		}
		for colIdx, pick := range totalled {
			totals[colIdx] += pick(rec)
		}
	}

	totalRow := len(records) + 2
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	for colIdx := range totalled {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, totalRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, totals[colIdx]); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastColumn, totalRow), totalStyle); err != nil {
		return nil, err
	}

	return f, nil
}

// Filename names the downloaded workbook after its date range.
func Filename(from string, to string) string {
	return fmt.Sprintf("shop-report-%s-to-%s.xlsx", from, to)
}
