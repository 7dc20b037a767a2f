// Package library implements a small book catalog kept in a single JSON file.
//
// Catalog operations are pure: they take a slice of books and return a new
// slice, never modifying their input.
package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrBookNotFound is returned when no book matches the requested title.
	ErrBookNotFound = errors.New("book not found")
	// ErrDuplicate is returned when adding a book whose ISBN is already listed.
	ErrDuplicate = errors.New("duplicate isbn")
)

// ValidationError reports a book that cannot be stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Book is a single catalog entry. ISBN is optional; when set it must be
// unique within the catalog.
type Book struct {
	ISBN   string
	Title  string
	Author string
	Year   int
}

func (b Book) String() string {
	s := fmt.Sprintf("%s by %s", b.Title, b.Author)
	if b.Year != 0 {
		s += fmt.Sprintf(" (%d)", b.Year)
	}
	if b.ISBN != "" {
		s += " [" + b.ISBN + "]"
	}
	return s
}

// Validate checks the fields required to store b.
func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if b.Year < 0 {
		return &ValidationError{Field: "year", Reason: "must not be negative"}
	}
	return nil
}

// Add returns a new catalog with b appended.
func Add(books []Book, b Book) ([]Book, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.ISBN != "" && slices.ContainsFunc(books, func(x Book) bool { return x.ISBN == b.ISBN }) {
		return nil, errors.Wrapf(ErrDuplicate, "isbn %s", b.ISBN)
	}

	out := make([]Book, 0, len(books)+1)
	out = append(out, books...)
	return append(out, b), nil
}

// Remove returns a new catalog without the first book whose title matches
// (case-insensitively).
func Remove(books []Book, title string) ([]Book, error) {
	i := indexByTitle(books, title)
	if i < 0 {
		return nil, errors.Wrapf(ErrBookNotFound, "title %q", title)
	}

	out := make([]Book, 0, len(books)-1)
	out = append(out, books[:i]...)
	return append(out, books[i+1:]...), nil
}

// Update returns a new catalog with the first book matching title replaced by b.
func Update(books []Book, title string, b Book) ([]Book, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	i := indexByTitle(books, title)
	if i < 0 {
		return nil, errors.Wrapf(ErrBookNotFound, "title %q", title)
	}
	if b.ISBN != "" {
		for j, x := range books {
			if j != i && x.ISBN == b.ISBN {
				return nil, errors.Wrapf(ErrDuplicate, "isbn %s", b.ISBN)
			}
		}
	}

	out := slices.Clone(books)
	out[i] = b
	return out, nil
}

// Search returns the books whose title, author or ISBN contains keyword,
// ignoring case. An empty keyword matches every book.
func Search(books []Book, keyword string) []Book {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	var out []Book
	for _, b := range books {
		if kw == "" ||
			strings.Contains(strings.ToLower(b.Title), kw) ||
			strings.Contains(strings.ToLower(b.Author), kw) ||
			strings.Contains(strings.ToLower(b.ISBN), kw) {
			out = append(out, b)
		}
	}
	return out
}

func indexByTitle(books []Book, title string) int {
	return slices.IndexFunc(books, func(b Book) bool {
		return strings.EqualFold(b.Title, title)
	})
}
