package invitations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pocketledger/pocketledger/internal/ability"
)

// Notifier enqueues an invitation notice for delivery out of band. A nil
// notifier disables notifications.
type Notifier interface {
	NotifyInvitation(ctx context.Context, email, message string, profileID int64) error
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Invite creates a PENDING invitation carrying the permission the new
// member will receive. Defaults to READ when unspecified.
func (s *Service) Invite(ctx context.Context, profileID, invitedBy int64, req CreateInvitationRequest) (*Invitation, error) {
	role := ability.RoleRead
	if req.Permission != "" {
		parsed, ok := ability.ParseRole(req.Permission)
		if !ok {
			return nil, fmt.Errorf("unknown permission %q", req.Permission)
		}
		role = parsed
	}

	inv := Invitation{
		ProfileID:  profileID,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Message:    strings.TrimSpace(req.Message),
		Permission: role,
		Token:      uuid.NewString(),
		Status:     StatusPending,
		InvitedBy:  invitedBy,
	}
	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	if s.notifier != nil {
		// Delivery is best effort; the invitation stands regardless.
		_ = s.notifier.NotifyInvitation(ctx, created.Email, created.Message, created.ProfileID)
	}
	return created, nil
}

// ListByProfile returns the invitations sent for a profile.
func (s *Service) ListByProfile(ctx context.Context, profileID int64) ([]Invitation, error) {
	return s.repo.ListByProfile(ctx, profileID)
}

// ListPendingForEmail returns the caller's open invitations.
func (s *Service) ListPendingForEmail(ctx context.Context, email string) ([]Invitation, error) {
	return s.repo.ListPendingForEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Accept finalizes a PENDING invitation: membership row plus ACCEPTED
// status in one transaction. Terminal; a second accept fails.
func (s *Service) Accept(ctx context.Context, token string, accountID int64) (*Invitation, error) {
	return s.repo.Accept(ctx, token, accountID)
}

// Reject declines a PENDING invitation. Terminal.
func (s *Service) Reject(ctx context.Context, token string, accountID int64) (*Invitation, error) {
	return s.repo.Reject(ctx, token, accountID)
}
