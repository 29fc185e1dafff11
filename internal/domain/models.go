package domain

import "time"

// ShopNames is the canonical shop list. Every record, inventory item and
// report series is keyed by one of these names.
var ShopNames = []string{
	"The Juice Hut",
	"Bubble Tea N Cotton Candy",
	"Coffee N Candy",
}

func IsShop(name string) bool {
	for _, shop := range ShopNames {
		if shop == name {
			return true
		}
	}
	return false
}

// UnitOptions lists the accepted inventory units.
var UnitOptions = []string{"pcs", "kg", "g", "L", "ml", "box", "bag", "pack"}

func IsUnit(unit string) bool {
	for _, option := range UnitOptions {
		if option == unit {
			return true
		}
	}
	return false
}

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

const (
	StockLevelLow     = "low"
	StockLevelMedium  = "medium"
	StockLevelHealthy = "healthy"
)

// DailyShopRecord is one shop's end-of-day submission, keyed by
// (ShopName, Date). Cash, TotalSale and Remaining are derived on the server
// and never trusted from the client.
type DailyShopRecord struct {
	ShopName       string  `json:"shopName"`
	Date           string  `json:"date"`
	UPI            float64 `json:"upi"`
	Card           float64 `json:"card"`
	Notes500       int     `json:"notes500"`
	Notes200       int     `json:"notes200"`
	Notes100       int     `json:"notes100"`
	Notes50        int     `json:"notes50"`
	Notes20        int     `json:"notes20"`
	Notes10        int     `json:"notes10"`
	Expenses       float64 `json:"expenses"`
	CounterCash    float64 `json:"counterCash"`
	Cash           float64 `json:"cash"`
	PosSale        float64 `json:"posSale"`
	TotalSale      float64 `json:"totalSale"`
	Remaining      float64 `json:"remaining"`
	CashGiven      float64 `json:"cashGiven"`
	SubmittedBy    string  `json:"submittedBy"`
	SubmissionDate string  `json:"submissionDate"`
}

// SubmitRecordRequest carries the daily form exactly as typed: every field is
// a raw string so that "empty" and "0" stay distinguishable for validation.
type SubmitRecordRequest struct {
	UPI         string `json:"upi"`
	Card        string `json:"card"`
	Notes500    string `json:"notes500"`
	Notes200    string `json:"notes200"`
	Notes100    string `json:"notes100"`
	Notes50     string `json:"notes50"`
	Notes20     string `json:"notes20"`
	Notes10     string `json:"notes10"`
	Expenses    string `json:"expenses"`
	CounterCash string `json:"counterCash"`
	PosSale     string `json:"posSale"`
	CashGiven   string `json:"cashGiven"`
}

// ValidationError carries per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// SpendEntry is one expense line, keyed by (Date, ID).
type SpendEntry struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	SubmittedBy    string  `json:"submittedBy"`
	SubmissionDate string  `json:"submissionDate"`
}

type SpendCreateRequest struct {
	Date  string  `json:"date"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type SpendUpdateRequest struct {
	Title *string  `json:"title,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

// InventoryItem is a stock line owned by one shop, keyed by (ShopName, ID).
type InventoryItem struct {
	ID        string  `json:"id"`
	ShopName  string  `json:"shopName"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	Opening   float64 `json:"opening"`
	Purchased float64 `json:"purchased"`
	Wastage   float64 `json:"wastage"`
	Sold      float64 `json:"sold"`
}

// Remaining is always derived, never stored. Negative results are allowed so
// that miscounts stay visible.
func (i InventoryItem) Remaining() float64 {
	return i.Opening + i.Purchased - i.Wastage - i.Sold
}

// Level classifies remaining stock for display: <=5 low, <=20 medium,
// otherwise healthy.
func (i InventoryItem) Level() string {
	remaining := i.Remaining()
	switch {
	case remaining <= 5:
		return StockLevelLow
	case remaining <= 20:
		return StockLevelMedium
	default:
		return StockLevelHealthy
	}
}

// InventoryItemView is an InventoryItem plus its derived fields, as returned
// by the list endpoint.
type InventoryItemView struct {
	InventoryItem
	RemainingStock float64 `json:"remaining"`
	StockLevel     string  `json:"level"`
}

func NewInventoryItemView(item InventoryItem) InventoryItemView {
	return InventoryItemView{
		InventoryItem:  item,
		RemainingStock: item.Remaining(),
		StockLevel:     item.Level(),
	}
}

// InventoryCreateRequest takes quantities as raw strings; blank or
// non-numeric values default to zero on add.
type InventoryCreateRequest struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Opening   string `json:"opening"`
	Purchased string `json:"purchased"`
	Wastage   string `json:"wastage"`
	Sold      string `json:"sold"`
}

// InventoryUpdateRequest mutates an item in place; nil fields are untouched.
type InventoryUpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	Unit      *string `json:"unit,omitempty"`
	Opening   *string `json:"opening,omitempty"`
	Purchased *string `json:"purchased,omitempty"`
	Wastage   *string `json:"wastage,omitempty"`
	Sold      *string `json:"sold,omitempty"`
}

// ChartSeries is one shop's positionally aligned values over the category
// axis of a ChartData.
type ChartSeries struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// ChartData is the per-field chart payload: one date category list plus one
// series per shop, aligned by index.
type ChartData struct {
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// RangeReport covers an inclusive DD-MM-YYYY date range.
type RangeReport struct {
	From              string               `json:"from"`
	To                string               `json:"to"`
	Records           []DailyShopRecord    `json:"records"`
	Charts            map[string]ChartData `json:"charts"`
	ShopTotals        map[string]float64   `json:"shopTotals"`
	GrandTotal        float64              `json:"grandTotal"`
	GrandTotalDisplay string               `json:"grandTotalDisplay"`
}

// ShopComparison is one shop's slice of the yesterday vs day-before card.
type ShopComparison struct {
	ShopName      string  `json:"shopName"`
	Total         float64 `json:"total"`
	TotalDisplay  string  `json:"totalDisplay"`
	PreviousTotal float64 `json:"previousTotal"`
	ChangePercent float64 `json:"changePercent"`
}

type DailyComparison struct {
	Date          string           `json:"date"`
	PreviousDate  string           `json:"previousDate"`
	Shops         []ShopComparison `json:"shops"`
	Total         float64          `json:"total"`
	TotalDisplay  string           `json:"totalDisplay"`
	PreviousTotal float64          `json:"previousTotal"`
	ChangePercent float64          `json:"changePercent"`
}

// MonthlySpendReport is the per-day spend series for one MM-YYYY month,
// zero-filled across every day of the month.
type MonthlySpendReport struct {
	Month        string      `json:"month"`
	Categories   []string    `json:"categories"`
	Series       ChartSeries `json:"series"`
	Total        float64     `json:"total"`
	TotalDisplay string      `json:"totalDisplay"`
}

// UserAccount is a login credential row. Password holds a bcrypt hash.
type UserAccount struct {
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies the authenticated caller attached to a request context.
type Actor struct {
	Email string
	Role  string
}

type StaffCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffUser struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
