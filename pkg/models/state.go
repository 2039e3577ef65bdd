package models

import (
	"fmt"
	"strings"
)

// Filter selects which items of the active list are visible.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Filters lists the filter values in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterDone}

// Valid reports whether f is one of the known filter values.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterDone:
		return true
	}
	return false
}

// Label returns the human-readable name of the filter.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterDone:
		return "Done"
	default:
		return "All"
	}
}

// ParseFilter converts user input into a Filter.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("invalid filter %q, must be one of: all, active, done", s)
	}
	return f, nil
}

// TaskItem is a single task with its completion flag.
type TaskItem struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// TaskList is a named, ordered collection of items.
type TaskList struct {
	ID    string     `json:"id" yaml:"id"`
	Name  string     `json:"name" yaml:"name"`
	Items []TaskItem `json:"items" yaml:"items"`
}

// AppState is the complete persisted snapshot of the application.
// ActiveListID is nil when no list is selected.
type AppState struct {
	Lists        []TaskList `json:"lists" yaml:"lists"`
	ActiveListID *string    `json:"activeListId" yaml:"activeListId"`
	Filter       Filter     `json:"filter" yaml:"filter"`
}

// DefaultState returns a fresh state with no lists, no selection and the
// "all" filter.
func DefaultState() *AppState {
	return &AppState{
		Lists:  []TaskList{},
		Filter: FilterAll,
	}
}

// ActiveID returns the active list id, or "" when none is selected.
func (s *AppState) ActiveID() string {
	if s.ActiveListID == nil {
		return ""
	}
	return *s.ActiveListID
}

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string {
	return &v
}

// ActiveList returns the selected list, or nil when nothing is selected or
// the selection no longer refers to an existing list.
func (s *AppState) ActiveList() *TaskList {
	if s.ActiveListID == nil {
		return nil
	}
	for i := range s.Lists {
		if s.Lists[i].ID == *s.ActiveListID {
			return &s.Lists[i]
		}
	}
	return nil
}

// Apply returns the items visible under f, preserving order. Unknown filter
// values show everything.
func (f Filter) Apply(items []TaskItem) []TaskItem {
	if f != FilterActive && f != FilterDone {
		return items
	}
	wantDone := f == FilterDone
	out := make([]TaskItem, 0, len(items))
	for _, it := range items {
		if it.Done == wantDone {
			out = append(out, it)
		}
	}
	return out
}

// Remaining counts the items in l that are not done.
func (l *TaskList) Remaining() int {
	n := 0
	for _, it := range l.Items {
		if !it.Done {
			n++
		}
	}
	return n
}

// HasCompleted reports whether any item in l is done.
func (l *TaskList) HasCompleted() bool {
	for _, it := range l.Items {
		if it.Done {
			return true
		}
	}
	return false
}
