package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/edushop/internal/database"
	"github.com/jask/edushop/internal/database/repository"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCourseUpsertReplacesTags(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRepo(newDB(t))

	c := repository.Course{ID: "c1", Title: "Figma", Instructor: "Anna", Price: 100, Rating: 4.5, Category: "Design", Tags: []string{"ui", "ux"}}
	require.NoError(t, repo.Upsert(ctx, c))

	c.Tags = []string{"figma"}
	c.Price = 150
	require.NoError(t, repo.Upsert(ctx, c))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(150), list[0].Price)
	require.Equal(t, []string{"figma"}, list[0].Tags)
}

func TestCourseListOrder(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRepo(newDB(t))

	require.NoError(t, repo.Upsert(ctx, repository.Course{ID: "b", Title: "B", Instructor: "x", Category: "A", SortOrder: 1}))
	require.NoError(t, repo.Upsert(ctx, repository.Course{ID: "a", Title: "A", Instructor: "x", Category: "A", SortOrder: 2}))
	require.NoError(t, repo.Upsert(ctx, repository.Course{ID: "c", Title: "C", Instructor: "x", Category: "A", SortOrder: 0}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	ids := []string{list[0].ID, list[1].ID, list[2].ID}
	require.Equal(t, []string{"c", "b", "a"}, ids)
	require.Nil(t, list[0].Tags)
}

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewKVRepo(newDB(t))

	_, ok, err := kv.Get(ctx, "user")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, "user", `{"id":"1"}`))
	require.NoError(t, kv.Set(ctx, "user", `{"id":"2"}`))
	require.NoError(t, kv.Set(ctx, "token", "abc"))

	v, ok, err := kv.Get(ctx, "user")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":"2"}`, v)

	require.NoError(t, kv.Delete(ctx, "user", "token", "missing"))
	require.NoError(t, kv.Delete(ctx))
	_, ok, err = kv.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCredentialRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCredentialRepo(newDB(t))

	got, err := repo.ByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Nil(t, got)

	c := repository.Credential{ID: "u1", Email: "Ann@X.com", Name: "Ann", PasswordHash: "h", HashVersion: "bcrypt", CreatedAt: database.Now()}
	require.NoError(t, repo.Insert(ctx, c))

	got, err = repo.ByEmail(ctx, "ANN@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "ann@x.com", got.Email)
	require.Equal(t, "Ann", got.Name)
	require.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Second)

	c.ID = "u2"
	require.ErrorIs(t, repo.Insert(ctx, c), repository.ErrDuplicate)
}
