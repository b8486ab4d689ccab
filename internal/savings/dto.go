package savings

type CreateGoalRequest struct {
	Name         string `json:"name" validate:"required,max=80"`
	AssetType    string `json:"asset_type" validate:"required,oneof=CASH DEPOSIT INVESTMENT OTHER"`
	TargetAmount string `json:"target_amount" validate:"required"`
}

type UpdateGoalRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=80"`
	AssetType    *string `json:"asset_type,omitempty" validate:"omitempty,oneof=CASH DEPOSIT INVESTMENT OTHER"`
	TargetAmount *string `json:"target_amount,omitempty"`
}

// AdjustRequest covers both deposits and withdrawals.
type AdjustRequest struct {
	Amount string `json:"amount" validate:"required"`
}
