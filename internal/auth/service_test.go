package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepository struct {
	accounts map[string]*Account
	nextID   int64

	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{accounts: make(map[string]*Account), nextID: 1}
}

func (m *mockRepository) Create(_ context.Context, email, name, passwordHash string) (*Account, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.accounts[email]; ok {
		return nil, ErrEmailTaken
	}
	a := &Account{
		ID:           m.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.nextID++
	m.accounts[email] = a
	return a, nil
}

func (m *mockRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepository) FindByID(_ context.Context, id int64) (*Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour)), repo
}

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc, repo := newTestService()

	account, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Ana@Example.COM ",
		Name:     "Ana",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", account.Email)

	stored := repo.accounts["ana@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Name: "A", Password: "passw0rd!"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Name: "A", Password: "passw0rd!"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService()
	account, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Name: "A", Password: "passw0rd!"})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	id, err := NewTokenIssuer("test-secret", time.Hour).Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id)
}

func TestLoginRejectsBadPasswordAndUnknownEmail(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Name: "A", Password: "passw0rd!"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@b.co", Password: "passw0rd!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co", Name: "A", Password: "passw0rd!"})
	require.NoError(t, err)
	repo.accounts["a@b.co"].IsActive = false

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "passw0rd!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsForgedAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)

	expired := NewTokenIssuer("secret-a", -time.Minute)
	token, err = expired.Issue(42)
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.Error(t, err)

	_, err = issuer.Verify("not-a-token")
	assert.Error(t, err)
}
