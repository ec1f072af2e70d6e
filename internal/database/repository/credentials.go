package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// CredentialRepo stores local account credentials.
type CredentialRepo struct {
	db *sql.DB
}

func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{db: db} }

// Insert adds a credential. Emails are stored lowercased; a second row for
// the same email returns ErrDuplicate.
func (r *CredentialRepo) Insert(ctx context.Context, c Credential) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO credentials(id, email, name, password_hash, hash_version, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, strings.ToLower(c.Email), c.Name, c.PasswordHash, c.HashVersion, c.CreatedAt)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

// ByEmail returns the credential for email, or nil when none exists.
func (r *CredentialRepo) ByEmail(ctx context.Context, email string) (*Credential, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, email, name, password_hash, hash_version, created_at
	FROM credentials WHERE email = ?`, strings.ToLower(email))
	var c Credential
	if err := row.Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.HashVersion, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
