package categories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	categories map[int64]*Category
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{categories: make(map[int64]*Category), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, profileID, id int64) (*Category, error) {
	c, ok := m.categories[id]
	if !ok || c.ProfileID != profileID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) List(_ context.Context, profileID int64) ([]Category, error) {
	var out []Category
	for _, c := range m.categories {
		if c.ProfileID == profileID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, c Category) (*Category, error) {
	for _, existing := range m.categories {
		if existing.ProfileID == c.ProfileID && existing.Name == c.Name {
			return nil, ErrAlreadyExists
		}
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.categories[c.ID] = &c
	return &c, nil
}

func (m *mockRepository) Update(_ context.Context, profileID, id int64, updates map[string]interface{}) error {
	c, ok := m.categories[id]
	if !ok || c.ProfileID != profileID {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		name := v.(string)
		for otherID, other := range m.categories {
			if otherID != id && other.ProfileID == profileID && other.Name == name {
				return ErrAlreadyExists
			}
		}
		c.Name = name
	}
	if v, ok := updates["color"]; ok {
		c.Color = v.(string)
	}
	return nil
}

func (m *mockRepository) Delete(_ context.Context, profileID, id int64) error {
	c, ok := m.categories[id]
	if !ok || c.ProfileID != profileID {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func TestCreateCategoryTrimsName(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "  Groceries "})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", c.Name)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Rent"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Rent"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Same name in another profile is fine.
	_, err = svc.Create(context.Background(), 2, CreateCategoryRequest{Name: "Rent"})
	assert.NoError(t, err)
}

func TestUpdateCategoryPartial(t *testing.T) {
	svc := NewService(newMockRepository())
	created, err := svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Food", Color: "#ff0000"})
	require.NoError(t, err)

	color := "#00ff00"
	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateCategoryRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)
	assert.Equal(t, "#00ff00", updated.Color)
}

func TestCategoryScopedToProfile(t *testing.T) {
	svc := NewService(newMockRepository())
	created, err := svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Food"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
