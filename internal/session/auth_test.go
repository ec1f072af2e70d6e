package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jask/edushop/internal/database"
	"github.com/jask/edushop/internal/database/repository"
)

func TestMockAuthenticatorIsDeterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockAuthenticator(0)

	reg, err := m.Register(ctx, Registration{Name: " Ann ", Email: "Ann@X.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "Ann", reg.Session.Name)
	require.Equal(t, "Ann@X.com", reg.Session.Email)
	require.NotEmpty(t, reg.Token)

	login, err := m.Login(ctx, Credentials{Email: "ann@x.com", Password: "anything"})
	require.NoError(t, err)
	require.Equal(t, reg.Session.ID, login.Session.ID)
	require.Equal(t, "ann", login.Session.Name)
	require.NotEqual(t, reg.Token, login.Token)
}

func TestMockAuthenticatorHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockAuthenticator(time.Hour).Login(ctx, Credentials{Email: "ann@x.com", Password: "x"})
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.ErrorIs(t, err, context.Canceled)
}

func newCredentialRepo(t *testing.T) *repository.CredentialRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewCredentialRepo(db)
}

func TestLocalAuthenticator(t *testing.T) {
	ctx := context.Background()
	repo := newCredentialRepo(t)
	a := NewLocalAuthenticator(repo)
	a.Cost = bcrypt.MinCost

	before := database.Now()
	grant, err := a.Register(ctx, Registration{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, IdentityID("ann@x.com"), grant.Session.ID)

	stored, err := repo.ByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Zero(t, stored.CreatedAt.Nanosecond())
	require.False(t, stored.CreatedAt.Before(before))

	_, err = a.Register(ctx, Registration{Name: "Ann again", Email: "ANN@x.com", Password: "secret2"})
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Contains(t, authErr.Reason, "already exists")

	got, err := a.Login(ctx, Credentials{Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, grant.Session.ID, got.Session.ID)
	require.Equal(t, "Ann", got.Session.Name)

	_, err = a.Login(ctx, Credentials{Email: "ann@x.com", Password: "wrong!"})
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "invalid email or password", authErr.Reason)

	_, err = a.Login(ctx, Credentials{Email: "bob@x.com", Password: "secret1"})
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "invalid email or password", authErr.Reason)
}
