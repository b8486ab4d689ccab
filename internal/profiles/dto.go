package profiles

type CreateProfileRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Currency string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

type UpdateMemberRequest struct {
	Permission string `json:"permission" validate:"required,oneof=ADMIN WRITE READ"`
}
