package render

import (
	"fmt"

	"github.com/valter-silva-au/tasklists/pkg/models"
)

// View is a host that displays fragments. Hosts must only read the fragments
// they are given; they never mutate application state while showing them.
type View interface {
	ShowLists(ListPanel)
	ShowHeader(Header)
	ShowFilters(FilterBar)
	ShowItems(ItemPanel)
}

// Scope selects which fragments a render pass rebuilds.
type Scope int

const (
	// ScopeNone skips rendering.
	ScopeNone Scope = iota
	// ScopeItems rebuilds the item panel.
	ScopeItems
	// ScopeFilter rebuilds the filter bar and the item panel.
	ScopeFilter
	// ScopeAll rebuilds every fragment.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeItems:
		return "items"
	case ScopeFilter:
		return "filter"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// Renderer pushes freshly built fragments into a View.
type Renderer struct {
	view View
}

// NewRenderer creates a Renderer for v. A nil view yields a renderer that
// discards every pass.
func NewRenderer(v View) *Renderer {
	return &Renderer{view: v}
}

// Render rebuilds the fragments covered by scope from s.
func (r *Renderer) Render(scope Scope, s *models.AppState) {
	if r == nil || r.view == nil {
		return
	}
	switch scope {
	case ScopeAll:
		r.view.ShowLists(BuildListPanel(s))
		r.view.ShowHeader(BuildHeader(s))
		r.view.ShowFilters(BuildFilterBar(s))
		r.view.ShowItems(BuildItemPanel(s))
	case ScopeFilter:
		r.view.ShowFilters(BuildFilterBar(s))
		r.view.ShowItems(BuildItemPanel(s))
	case ScopeItems:
		r.view.ShowItems(BuildItemPanel(s))
	}
}

// RenderAll is the full pass used at startup and after structural changes.
func (r *Renderer) RenderAll(s *models.AppState) {
	r.Render(ScopeAll, s)
}

// DeleteListPrompt is the confirmation question asked before a list is
// deleted together with its items.
func DeleteListPrompt(name string) string {
	return fmt.Sprintf(deleteListConfirm, name)
}
