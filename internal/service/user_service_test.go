package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/policy"
	"github.com/omomfi/district-reports-api/internal/repository"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter dto.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

var mainOfficeActor = policy.Actor{Username: "hq", Role: models.RoleMainOffice}

func validCreateRequest() dto.CreateUserRequest {
	district := "sodo"
	return dto.CreateUserRequest{
		Username:     "sodo_user",
		Password:     "secret123",
		FullName:     "Sodo User",
		Position:     "Accountant",
		EmailAddress: "sodo@example.com",
		Role:         models.RoleDistrictUser,
		District:     &district,
	}
}

func TestUserServiceCreate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), mainOfficeActor, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "sodo", *user.District)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	// Duplicate username becomes a conflict.
	_, err = svc.Create(context.Background(), mainOfficeActor, validCreateRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestUserServiceCreateDistrictRules(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), validator.New(), zap.NewNop())

	req := validCreateRequest()
	req.District = nil
	_, err := svc.Create(context.Background(), mainOfficeActor, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "district role without district")

	req = validCreateRequest()
	unknown := "atlantis"
	req.District = &unknown
	_, err = svc.Create(context.Background(), mainOfficeActor, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "unknown district")

	req = validCreateRequest()
	req.Username = "hq2"
	req.Role = models.RoleMainOffice
	_, err = svc.Create(context.Background(), mainOfficeActor, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "main office with district")

	// District values are accepted by label as well as id.
	req = validCreateRequest()
	req.Username = "sodo_user2"
	label := "Sodo"
	req.District = &label
	user, err := svc.Create(context.Background(), mainOfficeActor, req)
	require.NoError(t, err)
	assert.Equal(t, "sodo", *user.District)
}

func TestUserServicePolicyGate(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), validator.New(), zap.NewNop())
	manager := policy.Actor{Username: "d1m", Role: models.RoleDistrictManager, District: "district1"}

	_, err := svc.Create(context.Background(), manager, validCreateRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongRole))

	_, _, err = svc.List(context.Background(), manager, dto.UserFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongRole))
}

func TestUserServiceBootstrap(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Bootstrap(context.Background(), "password"))
	assert.Len(t, repo.users, 5)

	hq := repo.users["mainoffice_user"]
	require.NotNil(t, hq)
	assert.Equal(t, models.RoleMainOffice, hq.Role)
	assert.Nil(t, hq.District)

	d1 := repo.users["district1_manager"]
	require.NotNil(t, d1)
	assert.Equal(t, models.RoleDistrictManager, d1.Role)
	assert.Equal(t, "district1", *d1.District)

	// Bootstrap is idempotent.
	require.NoError(t, svc.Bootstrap(context.Background(), "password"))
	assert.Len(t, repo.users, 5)
}
