package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction as money in or money out.
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

// Transaction is a single ledger entry scoped to a profile.
type Transaction struct {
	ID          int64           `json:"id"`
	ProfileID   int64           `json:"profile_id"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	OccurredOn  time.Time       `json:"occurred_on"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
