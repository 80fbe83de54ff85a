package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "motomarket/internal/domain/auth"
	domainuser "motomarket/internal/domain/user"
	"motomarket/internal/infra/security"
	"motomarket/internal/infra/storage/memory"
)

func fixtureAuth(t *testing.T) *Service {
	t.Helper()
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterIssuesSession(t *testing.T) {
	svc := fixtureAuth(t)

	result, err := svc.Register(context.Background(), RegisterParams{
		Email:      "Rider@Example.com",
		Name:       "Alex Rider",
		Password:   "road-legal-8",
		WantToSell: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "rider@example.com", result.User.Email)
	assert.Contains(t, result.User.Roles, domainuser.RoleBuyer)
	assert.Contains(t, result.User.Roles, domainuser.RoleSeller)
	assert.NotContains(t, result.User.Roles, domainuser.RoleProvider)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := fixtureAuth(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "rider@example.com",
		Name:     "Alex",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "RIDER@example.com", Name: "Sam", Password: "road-legal-8"})
	assert.ErrorIs(t, err, domainuser.ErrEmailTaken)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginParams{Email: "rider@example.com", Password: "road-legal-8"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(ctx, LoginParams{Email: "rider@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "road-legal-8"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveTokenRoundTrip(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resolved.User.ID)
}

func TestLogoutEndsSession(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, registered.Token))

	_, err = svc.ResolveToken(ctx, registered.Token)
	assert.Error(t, err)
}

func TestUpdateProfileRenamesAccount(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	account, err := svc.UpdateProfile(ctx, registered.User.ID, "  Alex Rider  ")
	require.NoError(t, err)
	assert.Equal(t, "Alex Rider", account.Name)

	_, err = svc.UpdateProfile(ctx, registered.User.ID, "   ")
	assert.ErrorIs(t, err, domainuser.ErrNameRequired)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.User.ID, "wrong-password", "fresh-road-9")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, registered.User.ID, "road-legal-8", "tiny")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, registered.User.ID, "road-legal-8", "fresh-road-9"))

	_, err = svc.ResolveToken(ctx, registered.Token)
	assert.Error(t, err)

	_, err = svc.Login(ctx, LoginParams{Email: "rider@example.com", Password: "road-legal-8"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login(ctx, LoginParams{Email: "rider@example.com", Password: "fresh-road-9"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestExpiredSessionRejected(t *testing.T) {
	svc := fixtureAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterParams{Email: "rider@example.com", Name: "Alex", Password: "road-legal-8"})
	require.NoError(t, err)

	stale, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  "stale-token",
		UserID: registered.User.ID,
		TTL:    time.Minute,
		Now:    time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Sessions.Save(ctx, stale))

	_, err = svc.ResolveToken(ctx, "stale-token")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
