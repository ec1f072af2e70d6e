package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Registration is the input to Register.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Credentials is the input to Login.
type Credentials struct {
	Email    string
	Password string
}

// Grant is a successful authentication: who the user is and an opaque
// access token for later API calls.
type Grant struct {
	Session Session
	Token   string
}

// Authenticator talks to whatever backend owns accounts. Failures the user
// should see are *AuthError values.
type Authenticator interface {
	Register(ctx context.Context, r Registration) (Grant, error)
	Login(ctx context.Context, c Credentials) (Grant, error)
}

// MockAuthenticator accepts any well-formed input after Delay. Login does not
// check the password.
type MockAuthenticator struct {
	Delay time.Duration
}

func NewMockAuthenticator(delay time.Duration) *MockAuthenticator {
	return &MockAuthenticator{Delay: delay}
}

func (m *MockAuthenticator) Register(ctx context.Context, r Registration) (Grant, error) {
	if err := sleep(ctx, m.Delay); err != nil {
		return Grant{}, &AuthError{Reason: "registration failed", Err: err}
	}
	return Grant{
		Session: Session{ID: IdentityID(r.Email), Name: strings.TrimSpace(r.Name), Email: r.Email},
		Token:   "mock-" + uuid.NewString(),
	}, nil
}

func (m *MockAuthenticator) Login(ctx context.Context, c Credentials) (Grant, error) {
	if err := sleep(ctx, m.Delay); err != nil {
		return Grant{}, &AuthError{Reason: "login failed", Err: err}
	}
	return Grant{
		Session: Session{ID: IdentityID(c.Email), Name: displayName(c.Email), Email: c.Email},
		Token:   "mock-" + uuid.NewString(),
	}, nil
}

// IdentityID is the stable user ID for email.
func IdentityID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("user:"+strings.ToLower(strings.TrimSpace(email)))).String()
}

// displayName is the local part of email.
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
