package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/edushop/internal/database/repository"
)

// sampleCourses has categories {Programming x2, Design, Marketing}.
func sampleCourses() []repository.Course {
	return []repository.Course{
		{ID: "1", Title: "React Native from Zero", Instructor: "Ivan Ivanov", Price: 2990, Rating: 4.8, Students: 1245, Category: "Programming", Tags: []string{"react", "mobile", "javascript"}},
		{ID: "2", Title: "UI/UX Design Basics", Instructor: "Anna Smirnova", Price: 3990, Rating: 4.9, Students: 856, Category: "Design", Tags: []string{"ui", "ux", "figma"}},
		{ID: "3", Title: "Marketing for Beginners", Instructor: "Petr Ivanov", Price: 2490, Rating: 4.6, Students: 2103, Category: "Marketing", Tags: []string{"smm", "ads"}},
		{ID: "4", Title: "Go Backend Services", Instructor: "Maria Petrova", Price: 4590, Rating: 4.7, Students: 934, Category: "Programming", Tags: []string{"go", "backend"}},
	}
}

func ids(list []repository.Course) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{name: "empty query all categories", query: "", category: AllCategories, want: []string{"1", "2", "3", "4"}},
		{name: "empty category means all", query: "", category: "", want: []string{"1", "2", "3", "4"}},
		{name: "category only keeps order", query: "", category: "Programming", want: []string{"1", "4"}},
		{name: "tag match", query: "react", category: AllCategories, want: []string{"1"}},
		{name: "case insensitive title", query: "DESIGN", category: AllCategories, want: []string{"2"}},
		{name: "instructor substring", query: "ivanov", category: AllCategories, want: []string{"1", "3"}},
		{name: "query within category", query: "ivanov", category: "Marketing", want: []string{"3"}},
		{name: "surrounding whitespace ignored", query: "  figma ", category: AllCategories, want: []string{"2"}},
		{name: "whitespace-only query", query: "   ", category: "Design", want: []string{"2"}},
		{name: "no match", query: "haskell", category: AllCategories, want: []string{}},
		{name: "unknown category", query: "", category: "Cooking", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(sampleCourses(), tc.query, tc.category)
			require.Equal(t, tc.want, ids(got))
		})
	}
}

func TestFilterEmptyQueryReturnsListUnmodified(t *testing.T) {
	list := sampleCourses()
	require.Equal(t, list, Filter(list, "", AllCategories))
}

func TestFilterIsIdempotent(t *testing.T) {
	list := sampleCourses()
	for _, q := range []string{"", "an", "go", "x"} {
		for _, c := range categories(list) {
			first := Filter(list, q, c)
			require.Equal(t, first, Filter(list, q, c))
			require.Equal(t, first, Filter(first, q, c))
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	list := sampleCourses()
	_ = Filter(list, "react", "Programming")
	require.Equal(t, sampleCourses(), list)
}

func TestFilterNonASCII(t *testing.T) {
	list := []repository.Course{
		{ID: "1", Title: "Маркетинг для начинающих", Instructor: "Петр Иванов", Category: "Маркетинг", Tags: []string{"реклама"}},
	}
	require.Len(t, Filter(list, "МАРКЕТИНГ", AllCategories), 1)
	require.Len(t, Filter(list, "реклам", "Маркетинг"), 1)
}

func TestCategories(t *testing.T) {
	require.Equal(t, []string{AllCategories, "Programming", "Design", "Marketing"}, categories(sampleCourses()))
	require.Equal(t, []string{AllCategories}, categories(nil))
}
