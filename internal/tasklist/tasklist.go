// Package tasklist implements the dashboard list view: free-text search,
// completion filter and sort over an already fetched list of tasks.
package tasklist

import (
	"slices"
	"strings"

	"todo_webapp/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortAZ     Sort = "a-z"
)

// Query is the list view state. The zero value matches every task and
// keeps the newest first.
type Query struct {
	Search string
	Filter Filter
	Sort   Sort
}

// ParseQuery validates raw query parameters. Empty values select the
// defaults.
func ParseQuery(search, filter, sort string) (Query, error) {
	q := Query{Search: search, Filter: FilterAll, Sort: SortNewest}

	switch Filter(strings.ToLower(strings.TrimSpace(filter))) {
	case "", FilterAll:
	case FilterActive:
		q.Filter = FilterActive
	case FilterCompleted:
		q.Filter = FilterCompleted
	default:
		return Query{}, domain.Invalid("filter", "must be one of all, active, completed")
	}

	switch Sort(strings.ToLower(strings.TrimSpace(sort))) {
	case "", SortNewest:
	case SortOldest:
		q.Sort = SortOldest
	case SortAZ:
		q.Sort = SortAZ
	default:
		return Query{}, domain.Invalid("sort", "must be one of newest, oldest, a-z")
	}

	return q, nil
}

// Apply returns the tasks selected by q in display order. The input slice
// is not modified.
func Apply(tasks []*domain.Task, q Query) []*domain.Task {
	// Whitespace-only input is no search; otherwise the needle is not trimmed.
	needle := strings.ToLower(q.Search)
	if strings.TrimSpace(needle) == "" {
		needle = ""
	}

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" && !matches(t, needle) {
			continue
		}
		switch q.Filter {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, comparator(q.Sort))
	return out
}

func matches(t *domain.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
}

func comparator(s Sort) func(a, b *domain.Task) int {
	switch s {
	case SortOldest:
		return func(a, b *domain.Task) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		}
	case SortAZ:
		// Collator is not safe for concurrent use; one per call.
		col := collate.New(language.Und)
		return func(a, b *domain.Task) int {
			if c := col.CompareString(a.Title, b.Title); c != 0 {
				return c
			}
			if c := strings.Compare(a.Title, b.Title); c != 0 {
				return c
			}
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		}
	default:
		return func(a, b *domain.Task) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		}
	}
}
