package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/edushop/internal/database/repository"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(path))
	return path
}

func TestOpenMigratedCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "edushop.db")
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n, err := repository.NewCourseRepo(db).Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWithTxHonoursContext(t *testing.T) {
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := openTestDB(t)
	require.NoError(t, RunMigrations(path))

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"courses", "course_tags", "kv", "credentials"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	courses, err := repository.NewCourseRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, len(DefaultCourses()))
	for i, c := range courses {
		want := DefaultCourses()[i]
		require.Equal(t, want.ID, c.ID)
		require.Equal(t, want.Tags, c.Tags)
		require.Equal(t, i, c.SortOrder)
	}
}

func TestSeedCoursesAssignsStableIDs(t *testing.T) {
	ctx := context.Background()
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	courses := []repository.Course{
		{Title: "Go Concurrency", Instructor: "Rob", Price: 1990, Category: "Programming", Tags: []string{"go"}},
	}
	require.NoError(t, SeedCourses(ctx, db, courses))
	require.NoError(t, SeedCourses(ctx, db, courses))

	list, err := repository.NewCourseRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotEmpty(t, list[0].ID)
	require.Equal(t, []string{"go"}, list[0].Tags)
}

func TestSeedCoursesRollsBackOnInvalidRow(t *testing.T) {
	ctx := context.Background()
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = SeedCourses(ctx, db, []repository.Course{
		{ID: "ok", Title: "Fine", Instructor: "A", Price: 10, Category: "Design"},
		{ID: "bad", Title: "Negative", Instructor: "B", Price: -1, Category: "Design"},
	})
	require.Error(t, err)

	n, err := repository.NewCourseRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSeedCoursesAppendsAfterExistingCatalog(t *testing.T) {
	ctx := context.Background()
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	extra := []repository.Course{
		{ID: "extra-1", Title: "Rust Basics", Instructor: "Ferris", Price: 2990, Category: "Programming"},
		{ID: "extra-2", Title: "Watercolor", Instructor: "Ann", Price: 990, Category: "Design"},
	}
	require.NoError(t, SeedCourses(ctx, db, extra))
	// reseeding both sets must not reshuffle anything
	require.NoError(t, SeedCourses(ctx, db, DefaultCourses()))
	require.NoError(t, SeedCourses(ctx, db, extra))

	list, err := repository.NewCourseRepo(db).List(ctx)
	require.NoError(t, err)
	defaults := DefaultCourses()
	require.Len(t, list, len(defaults)+2)
	for i, want := range defaults {
		require.Equal(t, want.ID, list[i].ID)
		require.Equal(t, i, list[i].SortOrder)
	}
	require.Equal(t, "extra-1", list[len(defaults)].ID)
	require.Equal(t, len(defaults), list[len(defaults)].SortOrder)
	require.Equal(t, "extra-2", list[len(defaults)+1].ID)
}
