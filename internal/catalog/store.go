// Package catalog owns the immutable course list and the search views
// derived from it.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jask/edushop/internal/database/repository"
)

// CourseSource supplies the catalog once at load time.
type CourseSource interface {
	List(ctx context.Context) ([]repository.Course, error)
}

// Store holds the loaded catalog. After Load succeeds the course list never changes.
type Store struct {
	source CourseSource
	delay  time.Duration

	loadMu  sync.Mutex
	courses atomic.Pointer[[]repository.Course]
	loading atomic.Bool
}

// New returns a store that loads from source. delay stands in for a network
// round trip before the list becomes visible.
func New(source CourseSource, delay time.Duration) *Store {
	return &Store{source: source, delay: delay}
}

// NewStatic returns a store already holding courses.
func NewStatic(courses []repository.Course) (*Store, error) {
	if err := validate(courses); err != nil {
		return nil, err
	}
	s := &Store{}
	list := append([]repository.Course(nil), courses...)
	s.courses.Store(&list)
	return s, nil
}

// Load fetches the catalog. It is a no-op once the catalog is loaded.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.courses.Load() != nil {
		return nil
	}
	if s.source == nil {
		return fmt.Errorf("catalog: no course source")
	}

	s.loading.Store(true)
	defer s.loading.Store(false)

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("catalog: load: %w", ctx.Err())
		case <-t.C:
		}
	}

	list, err := s.source.List(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load: %w", err)
	}
	if err := validate(list); err != nil {
		return err
	}
	if list == nil {
		list = []repository.Course{}
	}
	s.courses.Store(&list)
	return nil
}

// Loading reports whether a Load is in progress.
func (s *Store) Loading() bool { return s.loading.Load() }

// Loaded reports whether the catalog is available.
func (s *Store) Loaded() bool { return s.courses.Load() != nil }

// ListAll returns the catalog in listing order. Empty before Load.
func (s *Store) ListAll() []repository.Course {
	p := s.courses.Load()
	if p == nil {
		return []repository.Course{}
	}
	return append([]repository.Course(nil), (*p)...)
}

// Filter applies the category and query filters to the whole catalog.
func (s *Store) Filter(query, category string) []repository.Course {
	p := s.courses.Load()
	if p == nil {
		return []repository.Course{}
	}
	return Filter(*p, query, category)
}

// Categories returns AllCategories followed by the catalog's categories.
func (s *Store) Categories() []string {
	p := s.courses.Load()
	if p == nil {
		return []string{AllCategories}
	}
	return categories(*p)
}

// ByID looks up a course.
func (s *Store) ByID(id string) (repository.Course, bool) {
	p := s.courses.Load()
	if p == nil {
		return repository.Course{}, false
	}
	for _, c := range *p {
		if c.ID == id {
			return c, true
		}
	}
	return repository.Course{}, false
}

func validate(list []repository.Course) error {
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		switch {
		case c.ID == "":
			return fmt.Errorf("catalog: course %q has no id", c.Title)
		case seen[c.ID]:
			return fmt.Errorf("catalog: duplicate course id %q", c.ID)
		case c.Price < 0:
			return fmt.Errorf("catalog: course %q: negative price", c.ID)
		case c.Students < 0:
			return fmt.Errorf("catalog: course %q: negative students", c.ID)
		case c.Rating < 0 || c.Rating > 5:
			return fmt.Errorf("catalog: course %q: rating %.1f out of range", c.ID, c.Rating)
		}
		seen[c.ID] = true
	}
	return nil
}
