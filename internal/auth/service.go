package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new account with a bcrypt-hashed credential.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, err := s.repo.Create(ctx, email, strings.TrimSpace(req.Name), string(hash))
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Login validates credentials and issues a Bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		Account:   *account,
	}, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}
