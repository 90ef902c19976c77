package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesadesk/ticketdesk/internal/common"
	"github.com/mesadesk/ticketdesk/internal/server/auth"
	"github.com/mesadesk/ticketdesk/internal/server/config"
	"github.com/mesadesk/ticketdesk/internal/server/models"
)

type fakeUserRepo struct {
	nextID  int64
	byID    map[int64]*models.User
	failAll error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, u := range r.byID {
		if u.PayrollNumber == user.PayrollNumber {
			return nil, common.ErrDuplicateUser
		}
	}
	r.nextID++
	u := *user
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.byID[u.ID] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetByPayrollNumber(ctx context.Context, payrollNumber int) (*models.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, u := range r.byID {
		if u.PayrollNumber == payrollNumber {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) SetSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	if r.failAll != nil {
		return r.failAll
	}
	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	exp := expiresAt
	u.RefreshToken = &token
	u.RefreshTokenExpiresAt = &exp
	return nil
}

func (r *fakeUserRepo) RotateSession(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, u := range r.byID {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken &&
			u.RefreshTokenExpiresAt != nil && u.RefreshTokenExpiresAt.After(time.Now()) {
			exp := expiresAt
			u.RefreshToken = &newToken
			u.RefreshTokenExpiresAt = &exp
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) ClearSession(ctx context.Context, userID int64) error {
	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = nil
	u.RefreshTokenExpiresAt = nil
	return nil
}

type fakeRoleRepo struct {
	roles map[string]*models.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*models.Role{
		"Admin":   {ID: 1, Name: "Admin"},
		"Support": {ID: 2, Name: "Support"},
	}}
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return role, nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]*models.Role, error) {
	result := make([]*models.Role, 0, len(r.roles))
	for _, role := range r.roles {
		result = append(result, role)
	}
	return result, nil
}

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	user, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Support", user.RoleName)
	assert.NotEqual(t, "Password1!", user.PasswordHash)

	ok, err := auth.VerifyPassword(user.PasswordHash, "Password1!")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_Register_UnknownRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Register(context.Background(), "Juan Poblano", 1234, "Password1!", "Wizard")
	assert.ErrorIs(t, err, common.ErrUnknownRole)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Impostor", 1234, "Other1!", "Support")
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newFakeRoleRepo(), testAuthConfig())

	user, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, 1234, "Password1!")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.Tokens().Verify(resp.AccessToken)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)
	assert.Equal(t, "Juan Poblano", claims.Name)
	assert.Equal(t, "Support", claims.Role)
	assert.Equal(t, 1234, claims.PayrollNumber)
	assert.WithinDuration(t, resp.AccessTokenExpiresAt, claims.ExpiresAt.Time, time.Second)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, resp.RefreshToken, *stored.RefreshToken)
}

// Wrong password and unknown payroll number must be indistinguishable.
func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)

	_, errWrongPassword := svc.Login(ctx, 1234, "nope")
	_, errUnknownUser := svc.Login(ctx, 9999, "Password1!")

	assert.ErrorIs(t, errWrongPassword, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownUser, common.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword, errUnknownUser)
}

func TestAuthService_Login_ReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)

	first, err := svc.Login(ctx, 1234, "Password1!")
	require.NoError(t, err)
	second, err := svc.Login(ctx, 1234, "Password1!")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The older refresh token is no longer the stored one.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenInvalid)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)
	session, err := svc.Login(ctx, 1234, "Password1!")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	claims, err := svc.Tokens().Verify(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Juan Poblano", claims.Name)

	// Single use: the consumed token cannot be replayed.
	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenInvalid)

	// The rotated token is live.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeRoleRepo(), testAuthConfig())

	_, err := svc.Refresh(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, common.ErrRefreshTokenInvalid)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newFakeRoleRepo(), testAuthConfig())

	user, err := svc.Register(ctx, "Juan Poblano", 1234, "Password1!", "Support")
	require.NoError(t, err)
	session, err := svc.Login(ctx, 1234, "Password1!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenInvalid)

	// Idempotent for existing users.
	assert.NoError(t, svc.Logout(ctx, user.ID))

	assert.ErrorIs(t, svc.Logout(ctx, 9999), common.ErrUserNotFound)
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newFakeRoleRepo(), testAuthConfig())

	repo.failAll = errors.New("connection refused")
	_, err := svc.Login(context.Background(), 1234, "Password1!")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
