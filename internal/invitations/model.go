package invitations

import (
	"time"

	"github.com/pocketledger/pocketledger/internal/ability"
)

// Status is the invitation lifecycle state. PENDING transitions exactly
// once to ACCEPTED or REJECTED and is never reopened.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Invitation is a pending offer of profile membership.
type Invitation struct {
	ID         int64        `json:"id"`
	ProfileID  int64        `json:"profile_id"`
	Email      string       `json:"email"`
	Message    string       `json:"message"`
	Permission ability.Role `json:"permission"`
	Token      string       `json:"token"`
	Status     Status       `json:"status"`
	InvitedBy  int64        `json:"invited_by"`
	CreatedAt  time.Time    `json:"created_at"`
	DecidedAt  *time.Time   `json:"decided_at,omitempty"`
}
