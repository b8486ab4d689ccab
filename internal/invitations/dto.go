package invitations

type CreateInvitationRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Message    string `json:"message" validate:"max=500"`
	Permission string `json:"permission" validate:"omitempty,oneof=ADMIN WRITE READ"`
}
