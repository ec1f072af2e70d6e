package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSearch(t *testing.T, delay time.Duration) *Search {
	t.Helper()
	store, err := NewStatic(sampleCourses())
	require.NoError(t, err)
	s := NewSearch(store, delay)
	t.Cleanup(s.Close)
	return s
}

func TestSearchStartsWithFullCatalog(t *testing.T) {
	s := newTestSearch(t, time.Hour)
	require.Equal(t, "", s.Query())
	require.Equal(t, AllCategories, s.Category())
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(s.Results()))
	require.False(t, s.Searching())
}

func TestSearchOnlyLatestTokenCommits(t *testing.T) {
	s := newTestSearch(t, time.Hour)

	first := s.Schedule("re")
	require.True(t, s.Searching())
	second := s.Schedule("react")

	require.False(t, s.Commit(first))
	require.True(t, s.Searching())
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(s.Results()))

	require.True(t, s.Commit(second))
	require.False(t, s.Searching())
	require.Equal(t, "react", s.Query())
	require.Equal(t, []string{"1"}, ids(s.Results()))

	require.False(t, s.Commit(second+1))
}

func TestSearchCategorySupersedesPendingPass(t *testing.T) {
	s := newTestSearch(t, time.Hour)

	token := s.Schedule("ivanov")
	s.SetCategory("Marketing")
	require.False(t, s.Searching())
	require.Equal(t, []string{"3"}, ids(s.Results()))
	require.False(t, s.Commit(token))
}

func TestSearchSetQueryDebounces(t *testing.T) {
	s := newTestSearch(t, 20*time.Millisecond)

	var mu sync.Mutex
	var views []View
	s.Subscribe(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, v)
	})

	s.SetQuery("r")
	s.SetQuery("re")
	s.SetQuery("react")
	require.True(t, s.Searching())

	require.Eventually(t, func() bool { return !s.Searching() }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"1"}, ids(s.Results()))

	mu.Lock()
	defer mu.Unlock()
	var committed []View
	for _, v := range views {
		if !v.Searching {
			committed = append(committed, v)
		}
	}
	require.Len(t, committed, 1)
	require.Equal(t, "react", committed[0].Query)
}

func TestSearchBlankQueryAppliesImmediately(t *testing.T) {
	s := newTestSearch(t, time.Hour)
	s.SetCategory("Programming")
	s.SetQuery("react")
	require.True(t, s.Searching())

	s.SetQuery("  ")
	require.False(t, s.Searching())
	require.Equal(t, []string{"1", "4"}, ids(s.Results()))
}

func TestSearchClear(t *testing.T) {
	s := newTestSearch(t, time.Hour)
	s.SetCategory("Design")
	token := s.Schedule("figma")

	s.Clear()
	require.Equal(t, "", s.Query())
	require.Equal(t, AllCategories, s.Category())
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(s.Results()))
	require.False(t, s.Commit(token))
}

func TestSearchRefreshAfterLoad(t *testing.T) {
	store := New(&sliceSource{courses: sampleCourses()}, 0)
	s := NewSearch(store, time.Hour)
	t.Cleanup(s.Close)
	s.SetCategory("Design")
	require.Empty(t, s.Results())

	require.NoError(t, store.Load(context.Background()))
	s.Refresh()
	require.Equal(t, []string{"2"}, ids(s.Results()))
}
