package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/ability"
)

type memberKey struct {
	profileID int64
	accountID int64
}

type mockRepository struct {
	profiles      map[int64]*Profile
	members       map[memberKey]ability.Role
	nextProfileID int64

	listMembersErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		profiles:      make(map[int64]*Profile),
		members:       make(map[memberKey]ability.Role),
		nextProfileID: 1,
	}
}

func (m *mockRepository) CreateWithOwner(_ context.Context, name, currency string, ownerID int64) (*Profile, error) {
	p := &Profile{
		ID:        m.nextProfileID,
		Name:      name,
		Currency:  currency,
		CreatedBy: ownerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.nextProfileID++
	m.profiles[p.ID] = p
	m.members[memberKey{p.ID, ownerID}] = ability.RoleAdmin
	return p, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) ListForAccount(_ context.Context, accountID int64) ([]ProfileWithRole, error) {
	var out []ProfileWithRole
	for key, role := range m.members {
		if key.accountID == accountID {
			out = append(out, ProfileWithRole{Profile: *m.profiles[key.profileID], Role: role})
		}
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["currency"]; ok {
		p.Currency = v.(string)
	}
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

func (m *mockRepository) ListMembers(_ context.Context, profileID int64) ([]Member, error) {
	if m.listMembersErr != nil {
		return nil, m.listMembersErr
	}
	var out []Member
	for key, role := range m.members {
		if key.profileID == profileID {
			out = append(out, Member{ProfileID: key.profileID, AccountID: key.accountID, Role: role})
		}
	}
	return out, nil
}

func (m *mockRepository) AddMember(_ context.Context, profileID, accountID int64, role ability.Role) error {
	key := memberKey{profileID, accountID}
	if _, ok := m.members[key]; ok {
		return ErrAlreadyMember
	}
	m.members[key] = role
	return nil
}

func (m *mockRepository) UpdateMemberRole(_ context.Context, profileID, accountID int64, role ability.Role) error {
	key := memberKey{profileID, accountID}
	if _, ok := m.members[key]; !ok {
		return ErrNotFound
	}
	m.members[key] = role
	return nil
}

func (m *mockRepository) RemoveMember(_ context.Context, profileID, accountID int64) error {
	key := memberKey{profileID, accountID}
	if _, ok := m.members[key]; !ok {
		return ErrNotFound
	}
	delete(m.members, key)
	return nil
}

func (m *mockRepository) MemberRole(_ context.Context, profileID, accountID int64) (ability.Role, error) {
	role, ok := m.members[memberKey{profileID, accountID}]
	if !ok {
		return "", ability.ErrNoMembership
	}
	return role, nil
}

func TestCreateProfileMakesOwnerAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	profile, err := svc.Create(context.Background(), CreateProfileRequest{Name: " Household "}, 10)
	require.NoError(t, err)
	assert.Equal(t, "Household", profile.Name)
	assert.Equal(t, "USD", profile.Currency)

	role, err := repo.MemberRole(context.Background(), profile.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, ability.RoleAdmin, role)
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	profile, err := svc.Create(context.Background(), CreateProfileRequest{Name: "P"}, 10)
	require.NoError(t, err)

	require.NoError(t, repo.AddMember(context.Background(), profile.ID, 11, ability.RoleRead))
	err = repo.AddMember(context.Background(), profile.ID, 11, ability.RoleWrite)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestUpdateMemberKeepsLastAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	profile, err := svc.Create(context.Background(), CreateProfileRequest{Name: "P"}, 10)
	require.NoError(t, err)

	// Demoting the only admin must fail.
	err = svc.UpdateMember(context.Background(), profile.ID, 10, UpdateMemberRequest{Permission: "WRITE"})
	assert.ErrorIs(t, err, ErrLastAdmin)

	// With a second admin present the demotion goes through.
	require.NoError(t, repo.AddMember(context.Background(), profile.ID, 11, ability.RoleAdmin))
	require.NoError(t, svc.UpdateMember(context.Background(), profile.ID, 10, UpdateMemberRequest{Permission: "WRITE"}))

	role, err := repo.MemberRole(context.Background(), profile.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, ability.RoleWrite, role)
}

func TestRemoveMemberKeepsLastAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	profile, err := svc.Create(context.Background(), CreateProfileRequest{Name: "P"}, 10)
	require.NoError(t, err)

	err = svc.RemoveMember(context.Background(), profile.ID, 10)
	assert.ErrorIs(t, err, ErrLastAdmin)

	require.NoError(t, repo.AddMember(context.Background(), profile.ID, 11, ability.RoleRead))
	require.NoError(t, svc.RemoveMember(context.Background(), profile.ID, 11))
}

func TestUpdateMemberRejectsUnknownPermission(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	profile, err := svc.Create(context.Background(), CreateProfileRequest{Name: "P"}, 10)
	require.NoError(t, err)

	err = svc.UpdateMember(context.Background(), profile.ID, 10, UpdateMemberRequest{Permission: "OWNER"})
	assert.Error(t, err)
}
