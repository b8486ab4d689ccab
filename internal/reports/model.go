package reports

import "github.com/shopspring/decimal"

// Summary totals income and expense over a date range.
type Summary struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CategoryShare is one category's slice of the range's spending.
type CategoryShare struct {
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	ExpensePct   float64         `json:"expense_pct"`
}

// MonthlyPoint is one month of the trend series. MoMPct compares this
// month's net against the previous one.
type MonthlyPoint struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	MoMPct  float64         `json:"mom_pct"`
}

// Trend is the monthly series for the trailing window.
type Trend struct {
	Months []MonthlyPoint `json:"months"`
}

// CategoryBreakdown wraps the per-category shares for a range.
type CategoryBreakdown struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Categories []CategoryShare `json:"categories"`
}
