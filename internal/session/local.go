package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jask/edushop/internal/database"
	"github.com/jask/edushop/internal/database/repository"
)

const hashVersionBcrypt = "bcrypt"

// CredentialStore persists local accounts.
type CredentialStore interface {
	Insert(ctx context.Context, c repository.Credential) error
	ByEmail(ctx context.Context, email string) (*repository.Credential, error)
}

// LocalAuthenticator verifies passwords against bcrypt hashes kept in a
// CredentialStore.
type LocalAuthenticator struct {
	Credentials CredentialStore
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewLocalAuthenticator(store CredentialStore) *LocalAuthenticator {
	return &LocalAuthenticator{Credentials: store}
}

var errBadCredentials = errors.New("invalid credentials")

func (a *LocalAuthenticator) Register(ctx context.Context, r Registration) (Grant, error) {
	existing, err := a.Credentials.ByEmail(ctx, r.Email)
	if err != nil {
		return Grant{}, &AuthError{Reason: "registration failed", Err: err}
	}
	if existing != nil {
		return Grant{}, &AuthError{Reason: "an account with this email already exists", Err: repository.ErrDuplicate}
	}

	cost := a.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), cost)
	if err != nil {
		return Grant{}, &AuthError{Reason: "registration failed", Err: fmt.Errorf("hash password: %w", err)}
	}

	cred := repository.Credential{
		ID:           IdentityID(r.Email),
		Email:        strings.ToLower(r.Email),
		Name:         strings.TrimSpace(r.Name),
		PasswordHash: string(hash),
		HashVersion:  hashVersionBcrypt,
		CreatedAt:    database.Now(),
	}
	if err := a.Credentials.Insert(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Grant{}, &AuthError{Reason: "an account with this email already exists", Err: err}
		}
		return Grant{}, &AuthError{Reason: "registration failed", Err: err}
	}
	return Grant{
		Session: Session{ID: cred.ID, Name: cred.Name, Email: r.Email},
		Token:   uuid.NewString(),
	}, nil
}

func (a *LocalAuthenticator) Login(ctx context.Context, c Credentials) (Grant, error) {
	cred, err := a.Credentials.ByEmail(ctx, c.Email)
	if err != nil {
		return Grant{}, &AuthError{Reason: "login failed", Err: err}
	}
	if cred == nil {
		return Grant{}, &AuthError{Reason: "invalid email or password", Err: errBadCredentials}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(c.Password)); err != nil {
		return Grant{}, &AuthError{Reason: "invalid email or password", Err: errBadCredentials}
	}
	return Grant{
		Session: Session{ID: cred.ID, Name: cred.Name, Email: cred.Email},
		Token:   uuid.NewString(),
	}, nil
}
