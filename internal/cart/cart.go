// Package cart is the in-memory shopping cart. Lines are kept in the order
// they were added and the same course may appear more than once.
package cart

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jask/edushop/internal/database/repository"
	"github.com/jask/edushop/internal/watch"
)

// ErrEmptyCart is returned by Checkout when there is nothing to buy.
var ErrEmptyCart = errors.New("cart: empty")

// Snapshot is an immutable view of the cart.
type Snapshot struct {
	Items []repository.Course
	Count int
	Total int64
}

// Receipt summarises a checkout.
type Receipt struct {
	Items []repository.Course
	Count int
	Total int64
}

// Store holds the cart for the lifetime of the process.
type Store struct {
	mu    sync.Mutex // serializes mutations and their notifications
	state atomic.Pointer[Snapshot]
	// purchased holds every course bought by Checkout, once each, in the
	// order first bought. Guarded by mu.
	purchased []repository.Course

	changes watch.Hub[Snapshot]
}

func New() *Store {
	s := &Store{}
	s.state.Store(&Snapshot{Items: []repository.Course{}})
	return s
}

// Snapshot returns the current cart. The Items slice is a copy.
func (s *Store) Snapshot() Snapshot {
	snap := *s.state.Load()
	snap.Items = append([]repository.Course{}, snap.Items...)
	return snap
}

func (s *Store) Items() []repository.Course { return s.Snapshot().Items }
func (s *Store) Count() int                  { return s.state.Load().Count }
func (s *Store) Total() int64                { return s.state.Load().Total }

// Contains reports whether any line holds courseID.
func (s *Store) Contains(courseID string) bool {
	for _, c := range s.state.Load().Items {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

// Subscribe registers fn for every change. fn runs synchronously after the
// mutation and must not mutate the cart itself.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	return s.changes.Subscribe(fn)
}

// Add appends course as a new line.
func (s *Store) Add(course repository.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Load().Items
	items := make([]repository.Course, 0, len(cur)+1)
	items = append(items, cur...)
	items = append(items, course)
	s.setLocked(items)
}

// Remove drops every line whose course ID is courseID and reports how many
// lines went. Nothing changes when none match.
func (s *Store) Remove(courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Load().Items
	items := make([]repository.Course, 0, len(cur))
	for _, c := range cur {
		if c.ID != courseID {
			items = append(items, c)
		}
	}
	removed := len(cur) - len(items)
	if removed == 0 {
		return 0
	}
	s.setLocked(items)
	return removed
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked([]repository.Course{})
}

// Checkout empties the cart, records its courses as purchased and returns
// what was in it. No payment is taken.
func (s *Store) Checkout() (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Load()
	if cur.Count == 0 {
		return Receipt{}, ErrEmptyCart
	}
	r := Receipt{Items: cur.Items, Count: cur.Count, Total: cur.Total}
	for _, c := range cur.Items {
		if !s.ownsLocked(c.ID) {
			s.purchased = append(s.purchased, c)
		}
	}
	s.setLocked([]repository.Course{})
	return r, nil
}

// Purchased returns the courses bought so far in this process.
func (s *Store) Purchased() []repository.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Course{}, s.purchased...)
}

// Owns reports whether courseID was bought.
func (s *Store) Owns(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownsLocked(courseID)
}

func (s *Store) ownsLocked(courseID string) bool {
	for _, c := range s.purchased {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

func (s *Store) setLocked(items []repository.Course) {
	snap := &Snapshot{Items: items, Count: len(items), Total: total(items)}
	s.state.Store(snap)
	s.changes.Publish(s.Snapshot())
}

func total(items []repository.Course) int64 {
	var sum int64
	for _, c := range items {
		sum += c.Price
	}
	return sum
}
