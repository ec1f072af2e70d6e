package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// CourseRepo handles the course catalog.
type CourseRepo struct {
	db *sql.DB
}

func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// Upsert writes the course and replaces its tags.
func (r *CourseRepo) Upsert(ctx context.Context, c Course) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := UpsertCourseTx(ctx, tx, c); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert course %s: %w", c.ID, err)
	}
	return tx.Commit()
}

// UpsertCourseTx is Upsert inside a caller-owned transaction.
func UpsertCourseTx(ctx context.Context, tx *sql.Tx, c Course) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO courses(id, title, instructor, price, rating, students, image, category, sort_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 title=excluded.title,
	 instructor=excluded.instructor,
	 price=excluded.price,
	 rating=excluded.rating,
	 students=excluded.students,
	 image=excluded.image,
	 category=excluded.category,
	 sort_order=excluded.sort_order;
	`, c.ID, c.Title, c.Instructor, c.Price, c.Rating, c.Students, c.Image, c.Category, c.SortOrder)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_tags WHERE course_id = ?`, c.ID); err != nil {
		return err
	}
	for i, tag := range c.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO course_tags(course_id, position, tag) VALUES (?, ?, ?)`, c.ID, i, tag); err != nil {
			return err
		}
	}
	return nil
}

// CourseSortOrdersTx returns the sort_order of every stored course and the
// first free position after them.
func CourseSortOrdersTx(ctx context.Context, tx *sql.Tx) (map[string]int, int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, sort_order FROM courses`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders := map[string]int{}
	next := 0
	for rows.Next() {
		var id string
		var pos int
		if err := rows.Scan(&id, &pos); err != nil {
			return nil, 0, err
		}
		orders[id] = pos
		if pos >= next {
			next = pos + 1
		}
	}
	return orders, next, rows.Err()
}

// Count returns the number of courses.
func (r *CourseRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	return n, err
}

// List returns every course in listing order with tags attached.
func (r *CourseRepo) List(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, instructor, price, rating, students, image, category, sort_order
	FROM courses ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	index := map[string]int{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Instructor, &c.Price, &c.Rating, &c.Students, &c.Image, &c.Category, &c.SortOrder); err != nil {
			return nil, err
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := r.db.QueryContext(ctx, `SELECT course_id, tag FROM course_tags ORDER BY course_id, position`)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id, tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].Tags = append(out[i].Tags, tag)
		}
	}
	return out, tagRows.Err()
}
