package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omomfi/district-reports-api/internal/models"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findUserErr      error
	refreshTokens    map[string]*models.RefreshToken
	findRefreshErr   error
	createRefreshErr error
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findUserErr != nil {
		return nil, m.findUserErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.findRefreshErr != nil {
		return nil, m.findRefreshErr
	}
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func districtUserAccount(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	district := "district1"
	return &models.User{
		ID:           "user-1",
		Username:     "district1_user",
		PasswordHash: string(hash),
		FullName:     "District One User",
		Role:         models.RoleDistrictUser,
		District:     &district,
	}
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Minute * 30,
		RefreshTokenExpiry: time.Hour * 24,
		Issuer:             "district-reports-api",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: districtUserAccount(t)}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "district1_user", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "district1_user", res.User.Username)
	assert.Equal(t, "district1", res.User.District)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "district1_user", claims.Username)
	assert.Equal(t, models.RoleDistrictUser, claims.Role)
	assert.Equal(t, "district1", claims.District)
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	repo := &mockAuthRepo{user: districtUserAccount(t)}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "district1_user", Password: "wrong"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "password"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials), "unknown user must look like bad credentials")
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	repo := &mockAuthRepo{user: districtUserAccount(t)}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "district1_user", Password: "password"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, res.RefreshToken, refreshed.RefreshToken)

	// The spent token is revoked by rotation.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRefreshExpired(t *testing.T) {
	repo := &mockAuthRepo{
		user: districtUserAccount(t),
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt-1", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)},
		},
	}
	svc := newAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := &mockAuthRepo{user: districtUserAccount(t)}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "district1_user", Password: "password"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Minute})
	_, err = other.ValidateToken(res.AccessToken)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockAuthRepo{user: districtUserAccount(t)}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "district1_user", Password: "password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.RefreshToken, "district1_user"))
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: res.RefreshToken})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
