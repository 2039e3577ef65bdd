// Package render turns an AppState snapshot into view fragments and pushes
// them into a View host. Fragments are rebuilt from scratch on every call.
package render

import (
	"strconv"

	"github.com/valter-silva-au/tasklists/pkg/models"
)

// Placeholder texts.
const (
	NoListsText       = "There is no list yet."
	NoSelectionText   = "No list selected"
	NoTasksText       = "No tasks yet"
	NoCompletedText   = "No completed tasks"
	remainingSuffix   = " left"
	deleteListConfirm = "Delete list \"%s\" and all its tasks?"
)

// ListEntry is one selectable list in the list panel.
type ListEntry struct {
	ID     string
	Name   string
	Active bool
}

// ListPanel is the list selector fragment.
type ListPanel struct {
	// Placeholder is set instead of Lists when there are no lists.
	Placeholder    string
	Lists          []ListEntry
	DeleteDisabled bool
}

// Header shows the active list and gates item entry.
type Header struct {
	Title         string
	InputDisabled bool
}

// FilterOption is one of the filter controls.
type FilterOption struct {
	Filter models.Filter
	Label  string
	Active bool
}

// FilterBar is the filter selector fragment.
type FilterBar struct {
	Options []FilterOption
}

// ItemRow is one visible item.
type ItemRow struct {
	ID   string
	Text string
	Done bool
}

// ItemPanel is the item list fragment with its footer.
type ItemPanel struct {
	// Placeholder is set instead of Rows when the filtered set is empty.
	Placeholder    string
	Rows           []ItemRow
	Remaining      int
	RemainingLabel string
	ClearDisabled  bool
}

// BuildListPanel renders the list selector.
func BuildListPanel(s *models.AppState) ListPanel {
	p := ListPanel{DeleteDisabled: s.ActiveListID == nil}
	if len(s.Lists) == 0 {
		p.Placeholder = NoListsText
		return p
	}
	active := s.ActiveID()
	p.Lists = make([]ListEntry, len(s.Lists))
	for i, l := range s.Lists {
		p.Lists[i] = ListEntry{ID: l.ID, Name: l.Name, Active: s.ActiveListID != nil && l.ID == active}
	}
	return p
}

// BuildHeader renders the title area.
func BuildHeader(s *models.AppState) Header {
	list := s.ActiveList()
	if list == nil {
		return Header{Title: NoSelectionText, InputDisabled: true}
	}
	return Header{Title: list.Name}
}

// BuildFilterBar renders the filter controls.
func BuildFilterBar(s *models.AppState) FilterBar {
	bar := FilterBar{Options: make([]FilterOption, len(models.Filters))}
	for i, f := range models.Filters {
		bar.Options[i] = FilterOption{Filter: f, Label: f.Label(), Active: s.Filter == f}
	}
	return bar
}

// BuildItemPanel renders the visible items of the active list. The remaining
// count covers the whole list, not only the filtered rows.
func BuildItemPanel(s *models.AppState) ItemPanel {
	list := s.ActiveList()
	if list == nil {
		return ItemPanel{RemainingLabel: RemainingLabel(0), ClearDisabled: true}
	}

	p := ItemPanel{
		Remaining:     list.Remaining(),
		ClearDisabled: !list.HasCompleted(),
	}
	p.RemainingLabel = RemainingLabel(p.Remaining)

	visible := s.Filter.Apply(list.Items)
	if len(visible) == 0 {
		if s.Filter == models.FilterDone {
			p.Placeholder = NoCompletedText
		} else {
			p.Placeholder = NoTasksText
		}
		return p
	}
	p.Rows = make([]ItemRow, len(visible))
	for i, it := range visible {
		p.Rows[i] = ItemRow{ID: it.ID, Text: it.Text, Done: it.Done}
	}
	return p
}

// RemainingLabel formats the remaining-count footer, e.g. "1 left".
func RemainingLabel(n int) string {
	return strconv.Itoa(n) + remainingSuffix
}
