package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jask/edushop/internal/database/repository"
)

const catalogFile = "catalog.toml"

type catalogTOML struct {
	Course []courseTOML `toml:"course"`
}

type courseTOML struct {
	ID         string   `toml:"id,omitempty"`
	Title      string   `toml:"title"`
	Instructor string   `toml:"instructor"`
	Price      int64    `toml:"price"`
	Rating     float64  `toml:"rating"`
	Students   int64    `toml:"students"`
	Image      string   `toml:"image,omitempty"`
	Category   string   `toml:"category"`
	Tags       []string `toml:"tags"`
}

// CatalogPath is the default location of the course seed file.
func CatalogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "edushop", catalogFile), nil
}

// LoadCourses reads a course list from a TOML file with one [[course]] table
// per course. A missing file yields no courses and no error.
func LoadCourses(path string) ([]repository.Course, error) {
	var raw catalogTOML
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	out := make([]repository.Course, 0, len(raw.Course))
	for i, c := range raw.Course {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return nil, fmt.Errorf("course[%d]: title is required", i)
		}
		category := strings.TrimSpace(c.Category)
		if category == "" {
			return nil, fmt.Errorf("course[%d] %q: category is required", i, title)
		}
		out = append(out, repository.Course{
			ID:         strings.TrimSpace(c.ID),
			Title:      title,
			Instructor: strings.TrimSpace(c.Instructor),
			Price:      c.Price,
			Rating:     c.Rating,
			Students:   c.Students,
			Image:      strings.TrimSpace(c.Image),
			Category:   category,
			Tags:       c.Tags,
		})
	}
	return out, nil
}

// SaveCourses writes courses in the format LoadCourses reads.
func SaveCourses(path string, courses []repository.Course) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	raw := catalogTOML{Course: make([]courseTOML, 0, len(courses))}
	for _, c := range courses {
		raw.Course = append(raw.Course, courseTOML{
			ID: c.ID, Title: c.Title, Instructor: c.Instructor,
			Price: c.Price, Rating: c.Rating, Students: c.Students,
			Image: c.Image, Category: c.Category, Tags: c.Tags,
		})
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
