// Package session tracks who is signed in. It runs register and login
// through an Authenticator, persists the identity and access token to a
// durable key-value Storage and restores the identity at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/jask/edushop/internal/watch"
)

// Durable storage keys.
const (
	UserKey  = "user"
	TokenKey = "token"
)

// Session is an authenticated identity.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// State is the store's lifecycle state.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Storage is the durable key-value area that survives restarts.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Snapshot is an immutable view of the store. Session is nil unless State
// is Authenticated.
type Snapshot struct {
	State   State
	Session *Session
}

// IsLoading reports an in-flight login or registration.
func (s Snapshot) IsLoading() bool { return s.State == Authenticating }

// Store is the session state machine.
type Store struct {
	auth    Authenticator
	storage Storage

	mu    sync.Mutex // serializes transitions and their notifications
	state atomic.Pointer[Snapshot]
	// storageMu orders durable writes: a logout purge finishes before a
	// later login persists. Taken after mu, never before.
	storageMu sync.Mutex
	// prev is the snapshot to return to if the in-flight call fails.
	prev Snapshot

	changes watch.Hub[Snapshot]
}

func NewStore(auth Authenticator, storage Storage) *Store {
	s := &Store{auth: auth, storage: storage}
	s.state.Store(&Snapshot{State: Anonymous})
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot { return *s.state.Load() }

func (s *Store) State() State    { return s.state.Load().State }
func (s *Store) IsLoading() bool { return s.state.Load().IsLoading() }

// Current returns the signed-in session, if any.
func (s *Store) Current() (Session, bool) {
	snap := s.state.Load()
	if snap.Session == nil {
		return Session{}, false
	}
	return *snap.Session, true
}

// Subscribe registers fn for every transition. fn must not call Login,
// Register, Logout or Restore synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	return s.changes.Subscribe(fn)
}

// Register validates the input, creates the account and signs in.
func (s *Store) Register(ctx context.Context, name, email, password string) (Session, error) {
	r := Registration{Name: name, Email: email, Password: password}
	if err := ValidateRegistration(r); err != nil {
		return Session{}, err
	}
	if err := s.begin(); err != nil {
		return Session{}, err
	}
	grant, err := s.auth.Register(ctx, r)
	return s.settle(ctx, grant, err, "registration failed")
}

// Login validates the input and signs in.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	c := Credentials{Email: email, Password: password}
	if err := ValidateLogin(c); err != nil {
		return Session{}, err
	}
	if err := s.begin(); err != nil {
		return Session{}, err
	}
	grant, err := s.auth.Login(ctx, c)
	return s.settle(ctx, grant, err, "login failed")
}

// Logout signs out and deletes the persisted identity and token. The store
// is Anonymous afterwards even if the delete fails; that failure is returned
// as a *StorageError.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Load().State == Authenticating {
		s.mu.Unlock()
		return ErrInFlight
	}
	s.setLocked(Snapshot{State: Anonymous})
	s.storageMu.Lock()
	s.mu.Unlock()
	defer s.storageMu.Unlock()

	if err := s.storage.Delete(ctx, UserKey, TokenKey); err != nil {
		return &StorageError{Op: "delete", Key: UserKey + "," + TokenKey, Err: err}
	}
	return nil
}

// Restore signs in from the persisted identity, if there is one. Anything
// missing or unreadable leaves the store Anonymous; read and decode failures
// come back as *StorageError for the caller to log.
func (s *Store) Restore(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return &StorageError{Op: "read", Key: UserKey, Err: err}
	}
	if !ok {
		return nil
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return &StorageError{Op: "decode", Key: UserKey, Err: err}
	}
	if sess.ID == "" || sess.Email == "" {
		return &StorageError{Op: "decode", Key: UserKey, Err: errors.New("incomplete identity")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Load().State != Anonymous {
		return nil
	}
	s.setLocked(Snapshot{State: Authenticated, Session: &sess})
	return nil
}

func (s *Store) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Load()
	if cur.State == Authenticating {
		return ErrInFlight
	}
	s.prev = *cur
	s.setLocked(Snapshot{State: Authenticating})
	return nil
}

func (s *Store) settle(ctx context.Context, grant Grant, err error, reason string) (Session, error) {
	if err != nil {
		s.mu.Lock()
		s.setLocked(s.prev)
		s.mu.Unlock()
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return Session{}, authErr
		}
		return Session{}, &AuthError{Reason: reason, Err: err}
	}

	sess := grant.Session
	if perr := s.persist(ctx, sess, grant.Token); perr != nil {
		log.Printf("warn: %v", perr)
	}

	s.mu.Lock()
	s.setLocked(Snapshot{State: Authenticated, Session: &sess})
	s.mu.Unlock()
	return sess, nil
}

func (s *Store) persist(ctx context.Context, sess Session, token string) error {
	s.storageMu.Lock()
	defer s.storageMu.Unlock()
	data, err := json.Marshal(sess)
	if err != nil {
		return &StorageError{Op: "encode", Key: UserKey, Err: err}
	}
	if err := s.storage.Set(ctx, UserKey, string(data)); err != nil {
		return &StorageError{Op: "write", Key: UserKey, Err: err}
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return &StorageError{Op: "write", Key: TokenKey, Err: err}
	}
	return nil
}

func (s *Store) setLocked(snap Snapshot) {
	s.state.Store(&snap)
	s.changes.Publish(snap)
}
