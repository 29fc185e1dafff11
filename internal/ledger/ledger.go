// Package ledger holds the cash reconciliation math for a daily shop
// submission. Inputs arrive as raw form strings; computation and validation
// are deliberately separate so a blank field can fail validation while still
// computing as zero everywhere else.
package ledger

import (
	"strconv"
	"strings"
)

// Input is the submission field set as typed by staff.
type Input struct {
	UPI         string
	Card        string
	Notes500    string
	Notes200    string
	Notes100    string
	Notes50     string
	Notes20     string
	Notes10     string
	Expenses    string
	CounterCash string
	PosSale     string
	CashGiven   string
}

// Totals are the derived figures recomputed on every submission.
type Totals struct {
	DenomTotal float64
	Cash       float64
	TotalSale  float64
	Remaining  float64
}

// ParseAmount converts a raw form value to a number. Blank or non-numeric
// input counts as zero and never errors.
func ParseAmount(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseCount is ParseAmount truncated to a whole note count.
func ParseCount(raw string) int {
	return int(ParseAmount(raw))
}

// Compute derives the reconciliation totals:
//
//	denomTotal = 500*n500 + 200*n200 + 100*n100 + 50*n50 + 20*n20 + 10*n10
//	cash       = denomTotal + expenses - counterCash
//	totalSale  = upi + card + cash
//	remaining  = totalSale - posSale
func Compute(in Input) Totals {
	denomTotal := 500*float64(ParseCount(in.Notes500)) +
		200*float64(ParseCount(in.Notes200)) +
		100*float64(ParseCount(in.Notes100)) +
		50*float64(ParseCount(in.Notes50)) +
		20*float64(ParseCount(in.Notes20)) +
		10*float64(ParseCount(in.Notes10))

	cash := denomTotal + ParseAmount(in.Expenses) - ParseAmount(in.CounterCash)
	totalSale := ParseAmount(in.UPI) + ParseAmount(in.Card) + cash

	return Totals{
		DenomTotal: denomTotal,
		Cash:       cash,
		TotalSale:  totalSale,
		Remaining:  totalSale - ParseAmount(in.PosSale),
	}
}

const requiredMessage = "This field is required"

// Validate checks that every field except the six denomination counts is
// non-empty. It returns a field->message map, empty when the input is valid.
func Validate(in Input) map[string]string {
	required := map[string]string{
		"upi":         in.UPI,
		"card":        in.Card,
		"expenses":    in.Expenses,
		"counterCash": in.CounterCash,
		"posSale":     in.PosSale,
		"cashGiven":   in.CashGiven,
	}

	fields := make(map[string]string)
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = requiredMessage
		}
	}
	return fields
}
