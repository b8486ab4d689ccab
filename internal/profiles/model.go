package profiles

import (
	"time"

	"github.com/pocketledger/pocketledger/internal/ability"
)

// Profile is a named financial workspace shared by one or more accounts.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileWithRole is a profile annotated with the caller's role on it.
type ProfileWithRole struct {
	Profile
	Role ability.Role `json:"role"`
}

// Member is the role-bearing link between an account and a profile.
type Member struct {
	ProfileID    int64        `json:"profile_id"`
	AccountID    int64        `json:"account_id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         ability.Role `json:"permission"`
	CreatedAt    time.Time    `json:"created_at"`
}
