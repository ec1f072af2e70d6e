package catalog

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jask/edushop/internal/database/repository"
	"github.com/jask/edushop/internal/watch"
)

// DefaultDebounce is how long a keystroke waits before its filter pass runs.
const DefaultDebounce = 300 * time.Millisecond

// Token identifies one scheduled filter pass. Only the newest token can commit.
type Token uint64

// View is what a search box shows.
type View struct {
	Query     string
	Category  string
	Courses   []repository.Course
	Searching bool
}

// Search is the filter state of one catalog view. A keystroke schedules a
// debounced pass; any later keystroke, category change or Clear supersedes
// it, and a superseded pass never becomes visible.
type Search struct {
	store *Store
	delay time.Duration

	mu     sync.Mutex
	latest Token
	timer  *time.Timer
	view   atomic.Pointer[View]

	changes watch.Hub[View]
}

// NewSearch starts a view over store with an empty query and AllCategories.
func NewSearch(store *Store, delay time.Duration) *Search {
	s := &Search{store: store, delay: delay}
	s.view.Store(&View{Category: AllCategories, Courses: store.ListAll()})
	return s
}

// Current returns the visible state.
func (s *Search) Current() View { return *s.view.Load() }

func (s *Search) Query() string                 { return s.Current().Query }
func (s *Search) Category() string              { return s.Current().Category }
func (s *Search) Results() []repository.Course { return s.Current().Courses }
func (s *Search) Searching() bool               { return s.Current().Searching }

// Delay is the debounce interval.
func (s *Search) Delay() time.Duration { return s.delay }

// Subscribe registers fn for every visible change.
func (s *Search) Subscribe(fn func(View)) (cancel func()) { return s.changes.Subscribe(fn) }

// Schedule records query and marks a pass as pending without running it.
// The caller arranges for Commit(token) after the debounce delay.
func (s *Search) Schedule(query string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.latest++
	v := s.Current()
	v.Query = query
	v.Searching = true
	s.setLocked(v)
	return s.latest
}

// Commit runs the pass for token if it is still the newest one and reports
// whether it did.
func (s *Search) Commit(token Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return false
	}
	v := s.Current()
	v.Courses = s.store.Filter(v.Query, v.Category)
	v.Searching = false
	s.setLocked(v)
	return true
}

// SetQuery updates the query. A blank query applies at once; anything else
// is debounced on a timer.
func (s *Search) SetQuery(query string) {
	if strings.TrimSpace(query) == "" {
		s.apply(func(v *View) { v.Query = query })
		return
	}
	token := s.Schedule(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return
	}
	s.timer = time.AfterFunc(s.delay, func() { s.Commit(token) })
}

// SetCategory switches category and refilters immediately with the current query.
func (s *Search) SetCategory(category string) {
	if category == "" {
		category = AllCategories
	}
	s.apply(func(v *View) { v.Category = category })
}

// Clear resets the query and category and shows the full catalog.
func (s *Search) Clear() {
	s.apply(func(v *View) {
		v.Query = ""
		v.Category = AllCategories
	})
}

// Refresh reruns the current filter, e.g. after the catalog finished loading.
func (s *Search) Refresh() { s.apply(func(*View) {}) }

// Close stops any pending timer.
func (s *Search) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.latest++
}

func (s *Search) apply(edit func(v *View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.latest++
	v := s.Current()
	edit(&v)
	v.Courses = s.store.Filter(v.Query, v.Category)
	v.Searching = false
	s.setLocked(v)
}

// setLocked publishes while holding mu so subscribers see changes in order.
// Subscribers must not call back into Search mutators.
func (s *Search) setLocked(v View) {
	s.view.Store(&v)
	s.changes.Publish(v)
}

func (s *Search) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
