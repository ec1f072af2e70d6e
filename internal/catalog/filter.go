package catalog

import (
	"strings"

	"github.com/jask/edushop/internal/database/repository"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// Filter returns the courses in list that are in category (unless it is
// AllCategories or empty) and whose title, instructor or one of whose tags
// contains query, ignoring case. A blank query matches everything. Listing
// order is kept.
func Filter(list []repository.Course, query, category string) []repository.Course {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]repository.Course, 0, len(list))
	for _, c := range list {
		if !matchesCategory(c, category) {
			continue
		}
		if q != "" && !matchesQuery(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesCategory(c repository.Course, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	return c.Category == category
}

// matchesQuery expects q to be lowercased already.
func matchesQuery(c repository.Course, q string) bool {
	if strings.Contains(strings.ToLower(c.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Instructor), q) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// categories lists AllCategories followed by each category in first-seen order.
func categories(list []repository.Course) []string {
	out := []string{AllCategories}
	seen := map[string]bool{}
	for _, c := range list {
		if c.Category == "" || seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		out = append(out, c.Category)
	}
	return out
}
