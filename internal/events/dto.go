package events

type CreateEventRequest struct {
	Title    string `json:"title" validate:"required,max=120"`
	StartsAt string `json:"starts_at" validate:"required"`
	AllDay   bool   `json:"all_day"`
	Note     string `json:"note" validate:"omitempty,max=2000"`
	RemindAt string `json:"remind_at" validate:"omitempty"`
}

type UpdateEventRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=120"`
	StartsAt *string `json:"starts_at,omitempty"`
	AllDay   *bool   `json:"all_day,omitempty"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=2000"`
	RemindAt *string `json:"remind_at,omitempty"`
}
