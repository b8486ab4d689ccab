package savings

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType classifies where a savings goal is held.
type AssetType string

const (
	AssetCash       AssetType = "CASH"
	AssetDeposit    AssetType = "DEPOSIT"
	AssetInvestment AssetType = "INVESTMENT"
	AssetOther      AssetType = "OTHER"
)

// Goal is a savings target within a profile. CurrentAmount only moves
// through deposits and withdrawals.
type Goal struct {
	ID            int64           `json:"id"`
	ProfileID     int64           `json:"profile_id"`
	Name          string          `json:"name"`
	AssetType     AssetType       `json:"asset_type"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
