package jobs

import (
	"context"
	"strconv"
)

// Title is a single recruitable role read from the job title table.
type Title struct {
	ID    int64  `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
}

func (t Title) String() string {
	return strconv.FormatInt(t.ID, 10) + " " + t.Title
}

// Source returns the full set of job titles. Every call re-reads the store.
type Source interface {
	All(ctx context.Context) ([]Title, error)
}

// Titles is an ordered list of job titles.
type Titles []Title

func (t Titles) Len() int {
	return len(t)
}

// Contains reports whether a title with the same id and text is present.
func (t Titles) Contains(title Title) bool {
	for _, candidate := range t {
		if candidate == title {
			return true
		}
	}

	return false
}

func (t Titles) IDs() []int64 {
	ids := make([]int64, 0, len(t))
	for _, title := range t {
		ids = append(ids, title.ID)
	}

	return ids
}

func (t Titles) Names() []string {
	names := make([]string, 0, len(t))
	for _, title := range t {
		names = append(names, title.Title)
	}

	return names
}
