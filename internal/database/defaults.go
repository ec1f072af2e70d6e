package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/edushop/internal/database/repository"
)

// DefaultCourses is the built-in sample catalog.
func DefaultCourses() []repository.Course {
	return []repository.Course{
		{
			ID:         "1",
			Title:      "React Native from Zero to PRO",
			Instructor: "Ivan Ivanov",
			Price:      2990,
			Rating:     4.8,
			Students:   1245,
			Image:      "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=400&h=300&fit=crop",
			Category:   "Programming",
			Tags:       []string{"react", "mobile", "javascript"},
		},
		{
			ID:         "2",
			Title:      "UI/UX Design for Beginners",
			Instructor: "Anna Smirnova",
			Price:      3990,
			Rating:     4.9,
			Students:   856,
			Image:      "https://images.unsplash.com/photo-1558655146-364adaf1fcc9?w=400&h=300&fit=crop",
			Category:   "Design",
			Tags:       []string{"ui", "ux", "figma", "design"},
		},
		{
			ID:         "3",
			Title:      "Marketing for Beginners",
			Instructor: "Petr Ivanov",
			Price:      2490,
			Rating:     4.6,
			Students:   2103,
			Image:      "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=400&h=300&fit=crop",
			Category:   "Marketing",
			Tags:       []string{"marketing", "smm", "advertising"},
		},
		{
			ID:         "4",
			Title:      "Business Analytics and Excel",
			Instructor: "Maria Petrova",
			Price:      4590,
			Rating:     4.7,
			Students:   934,
			Image:      "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=400&h=300&fit=crop",
			Category:   "Business",
			Tags:       []string{"excel", "business", "analytics"},
		},
	}
}

// SeedDefaults ensures the sample catalog exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	n, err := repository.NewCourseRepo(db).Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return SeedCourses(ctx, db, DefaultCourses())
}

// SeedCourses upserts courses in one transaction. Courses without an ID get a
// stable one derived from their title. Courses already present keep their
// place; new ones are appended after the current last course in slice order.
func SeedCourses(ctx context.Context, db *sql.DB, courses []repository.Course) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		orders, next, err := repository.CourseSortOrdersTx(ctx, tx)
		if err != nil {
			return fmt.Errorf("read sort order: %w", err)
		}
		for _, c := range courses {
			if c.ID == "" {
				c.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("course:"+c.Title)).String()
			}
			if pos, ok := orders[c.ID]; ok {
				c.SortOrder = pos
			} else {
				c.SortOrder = next
				orders[c.ID] = next
				next++
			}
			if err := repository.UpsertCourseTx(ctx, tx, c); err != nil {
				return fmt.Errorf("seed course %q: %w", c.Title, err)
			}
		}
		return nil
	})
}
