package transactions

type CreateTransactionRequest struct {
	Type        string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required,max=300"`
	CategoryID  *int64 `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	OccurredOn  string `json:"occurred_on" validate:"required,datetime=2006-01-02"`
}

type UpdateTransactionRequest struct {
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=INCOME EXPENSE"`
	Amount      *string `json:"amount,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
	CategoryID  *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	OccurredOn  *string `json:"occurred_on,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ListFilters narrows a profile's transaction listing.
type ListFilters struct {
	Type       string
	CategoryID *int64
	From       string
	To         string
	Page       int
	Limit      int
}

type ParseRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
