// Package core holds the task-list state store and the controller that
// sequences every user action as mutate, persist, render.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// ErrNotFound is returned by the lookup helpers when no list or item matches.
var ErrNotFound = errors.New("not found")

// Confirmer gates destructive operations behind an explicit yes/no answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm answers yes without asking. Use it once the user has already
// agreed, e.g. after a y/n modal or a --yes flag.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// Store owns the in-memory AppState and applies mutations to it. Invalid
// input and references to missing lists or items are ignored; every mutator
// returns the render scope the change requires, or render.ScopeNone when
// nothing changed.
type Store struct {
	state *models.AppState
	ids   IDGenerator
}

// NewStore wraps state. A nil state starts from models.DefaultState.
func NewStore(state *models.AppState, ids IDGenerator) *Store {
	if state == nil {
		state = models.DefaultState()
	}
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Store{state: state, ids: ids}
}

// State returns the live state. Callers must treat it as read-only.
func (s *Store) State() *models.AppState {
	return s.state
}

// ActiveList returns the selected list or nil.
func (s *Store) ActiveList() *models.TaskList {
	return s.state.ActiveList()
}

// AddList appends a list named name (trimmed) and selects it.
func (s *Store) AddList(name string) render.Scope {
	name = strings.TrimSpace(name)
	if name == "" {
		return render.ScopeNone
	}
	list := models.TaskList{ID: s.ids.NewID(), Name: name, Items: []models.TaskItem{}}
	s.state.Lists = append(s.state.Lists, list)
	s.state.ActiveListID = models.StringPtr(list.ID)
	return render.ScopeAll
}

// DeleteActiveList removes the selected list and its items once confirm
// agrees. The first remaining list, if any, becomes active.
func (s *Store) DeleteActiveList(confirm Confirmer) render.Scope {
	if s.state.ActiveListID == nil {
		return render.ScopeNone
	}
	name := ""
	if list := s.ActiveList(); list != nil {
		name = list.Name
	}
	if confirm == nil || !confirm.Confirm(render.DeleteListPrompt(name)) {
		return render.ScopeNone
	}

	active := *s.state.ActiveListID
	for i, l := range s.state.Lists {
		if l.ID == active {
			s.state.Lists = append(s.state.Lists[:i], s.state.Lists[i+1:]...)
			break
		}
	}
	if len(s.state.Lists) > 0 {
		s.state.ActiveListID = models.StringPtr(s.state.Lists[0].ID)
	} else {
		s.state.ActiveListID = nil
	}
	return render.ScopeAll
}

// AddItem appends a not-done item to the active list.
func (s *Store) AddItem(text string) render.Scope {
	list := s.ActiveList()
	if list == nil {
		return render.ScopeNone
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return render.ScopeNone
	}
	list.Items = append(list.Items, models.TaskItem{ID: s.ids.NewID(), Text: text})
	return render.ScopeItems
}

// ToggleItem flips the done flag of itemID in the active list.
func (s *Store) ToggleItem(itemID string) render.Scope {
	it := s.findItem(itemID)
	if it == nil {
		return render.ScopeNone
	}
	it.Done = !it.Done
	return render.ScopeItems
}

// SetItemDone sets the done flag of itemID in the active list.
func (s *Store) SetItemDone(itemID string, done bool) render.Scope {
	it := s.findItem(itemID)
	if it == nil || it.Done == done {
		return render.ScopeNone
	}
	it.Done = done
	return render.ScopeItems
}

// DeleteItem removes itemID from the active list.
func (s *Store) DeleteItem(itemID string) render.Scope {
	list := s.ActiveList()
	if list == nil {
		return render.ScopeNone
	}
	for i, it := range list.Items {
		if it.ID == itemID {
			list.Items = append(list.Items[:i], list.Items[i+1:]...)
			return render.ScopeItems
		}
	}
	return render.ScopeNone
}

// ClearCompleted drops every done item from the active list.
func (s *Store) ClearCompleted() render.Scope {
	list := s.ActiveList()
	if list == nil {
		return render.ScopeNone
	}
	kept := make([]models.TaskItem, 0, len(list.Items))
	for _, it := range list.Items {
		if !it.Done {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(list.Items) {
		return render.ScopeNone
	}
	list.Items = kept
	return render.ScopeItems
}

// SetActiveList selects listID. Unknown ids are ignored so the selection
// never dangles.
func (s *Store) SetActiveList(listID string) render.Scope {
	if s.state.ActiveListID != nil && *s.state.ActiveListID == listID {
		return render.ScopeNone
	}
	for _, l := range s.state.Lists {
		if l.ID == listID {
			s.state.ActiveListID = models.StringPtr(listID)
			return render.ScopeAll
		}
	}
	return render.ScopeNone
}

// SetFilter changes the visible-item filter.
func (s *Store) SetFilter(f models.Filter) render.Scope {
	if !f.Valid() || s.state.Filter == f {
		return render.ScopeNone
	}
	s.state.Filter = f
	return render.ScopeFilter
}

// VisibleItems returns the active list's items under the current filter.
func (s *Store) VisibleItems() []models.TaskItem {
	list := s.ActiveList()
	if list == nil {
		return nil
	}
	return s.state.Filter.Apply(list.Items)
}

// RemainingCount counts not-done items in the whole active list.
func (s *Store) RemainingCount() int {
	list := s.ActiveList()
	if list == nil {
		return 0
	}
	return list.Remaining()
}

// HasCompleted reports whether the active list has any done item.
func (s *Store) HasCompleted() bool {
	list := s.ActiveList()
	return list != nil && list.HasCompleted()
}

// FindList resolves ref against list ids, then names (case-insensitive),
// then unique id prefixes.
func (s *Store) FindList(ref string) (*models.TaskList, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("list reference is empty: %w", ErrNotFound)
	}
	for i := range s.state.Lists {
		if s.state.Lists[i].ID == ref {
			return &s.state.Lists[i], nil
		}
	}
	var byName []*models.TaskList
	for i := range s.state.Lists {
		if strings.EqualFold(s.state.Lists[i].Name, ref) {
			byName = append(byName, &s.state.Lists[i])
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return nil, fmt.Errorf("list name %q is ambiguous (%d lists), use an id", ref, len(byName))
	}

	var match *models.TaskList
	for i := range s.state.Lists {
		if strings.HasPrefix(s.state.Lists[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("list id prefix %q is ambiguous", ref)
			}
			match = &s.state.Lists[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("list %q: %w", ref, ErrNotFound)
	}
	return match, nil
}

// FindItem resolves ref against the active list's item ids, accepting any
// unique prefix.
func (s *Store) FindItem(ref string) (*models.TaskItem, error) {
	list := s.ActiveList()
	if list == nil {
		return nil, fmt.Errorf("no list selected: %w", ErrNotFound)
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("item reference is empty: %w", ErrNotFound)
	}
	var match *models.TaskItem
	for i := range list.Items {
		id := list.Items[i].ID
		if id == ref {
			return &list.Items[i], nil
		}
		if strings.HasPrefix(id, ref) {
			if match != nil {
				return nil, fmt.Errorf("item id prefix %q is ambiguous", ref)
			}
			match = &list.Items[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("item %q in list %q: %w", ref, list.Name, ErrNotFound)
	}
	return match, nil
}

func (s *Store) findItem(itemID string) *models.TaskItem {
	list := s.ActiveList()
	if list == nil {
		return nil
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			return &list.Items[i]
		}
	}
	return nil
}
