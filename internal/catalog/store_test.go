package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/edushop/internal/database/repository"
)

type sliceSource struct {
	courses []repository.Course
	err     error
	calls   int
}

func (s *sliceSource) List(context.Context) ([]repository.Course, error) {
	s.calls++
	return s.courses, s.err
}

func TestStoreLoad(t *testing.T) {
	src := &sliceSource{courses: sampleCourses()}
	store := New(src, 0)
	require.False(t, store.Loaded())
	require.Empty(t, store.ListAll())
	require.Equal(t, []string{AllCategories}, store.Categories())

	require.NoError(t, store.Load(context.Background()))
	require.NoError(t, store.Load(context.Background()))
	require.Equal(t, 1, src.calls)
	require.True(t, store.Loaded())
	require.False(t, store.Loading())
	require.Equal(t, sampleCourses(), store.ListAll())

	c, ok := store.ByID("3")
	require.True(t, ok)
	require.Equal(t, "Marketing for Beginners", c.Title)
	_, ok = store.ByID("nope")
	require.False(t, ok)
}

func TestStoreListAllReturnsCopy(t *testing.T) {
	store, err := NewStatic(sampleCourses())
	require.NoError(t, err)

	list := store.ListAll()
	list[0].Title = "changed"
	require.Equal(t, "React Native from Zero", store.ListAll()[0].Title)
}

func TestStoreLoadHonoursContext(t *testing.T) {
	store := New(&sliceSource{courses: sampleCourses()}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, store.Loaded())
	require.False(t, store.Loading())
}

func TestStoreLoadReportsLoading(t *testing.T) {
	store := New(&sliceSource{courses: sampleCourses()}, 50*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background()) }()

	require.Eventually(t, store.Loading, time.Second, time.Millisecond)
	require.NoError(t, <-done)
	require.False(t, store.Loading())
}

func TestStoreLoadErrors(t *testing.T) {
	boom := errors.New("boom")
	store := New(&sliceSource{err: boom}, 0)
	require.ErrorIs(t, store.Load(context.Background()), boom)
	require.False(t, store.Loaded())

	dup := sampleCourses()
	dup[1].ID = dup[0].ID
	_, err := NewStatic(dup)
	require.ErrorContains(t, err, "duplicate")

	bad := sampleCourses()
	bad[2].Rating = 6
	_, err = NewStatic(bad)
	require.ErrorContains(t, err, "rating")
}

func TestStoreFilterScenarios(t *testing.T) {
	store, err := NewStatic(sampleCourses())
	require.NoError(t, err)

	require.Equal(t, store.ListAll(), store.Filter("", AllCategories))
	require.Equal(t, []string{"1", "4"}, ids(store.Filter("", "Programming")))
	require.Equal(t, []string{"1"}, ids(store.Filter("react", AllCategories)))
}

func TestSuggest(t *testing.T) {
	store, err := NewStatic(sampleCourses())
	require.NoError(t, err)

	require.Equal(t, "react", store.Suggest("raect", 2))
	require.Equal(t, "figma", store.Suggest("Figna", 2))
	require.Equal(t, "", store.Suggest("react", 2))
	require.Equal(t, "", store.Suggest("kubernetes", 2))
	require.Equal(t, "", store.Suggest("raect", 0))
	require.Equal(t, "", store.Suggest("  ", 2))
}

func TestSuggestCorrectsEachWord(t *testing.T) {
	store, err := NewStatic(sampleCourses())
	require.NoError(t, err)

	require.Equal(t, "react native", store.Suggest("react natve", 2))
	require.Equal(t, "react native", store.Suggest("  Raect   NATVE ", 2))
	require.Equal(t, "go backend", store.Suggest("go backnd", 2))
	require.Equal(t, "", store.Suggest("react native", 2))
	require.Equal(t, "", store.Suggest("react kubernetes", 2))
}
