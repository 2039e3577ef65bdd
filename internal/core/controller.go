package core

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/tasklists/internal/render"
	"github.com/valter-silva-au/tasklists/internal/storage"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// ErrClosed is returned by controller actions after Close.
var ErrClosed = errors.New("controller is closed")

// EventLogger is the subset of the observability event log that the
// controller needs. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// ControllerOpts configures NewController.
type ControllerOpts struct {
	// Persist is required.
	Persist storage.StateStore
	// View receives render passes. Nil discards them.
	View render.View
	// IDs defaults to NewIDGenerator.
	IDs IDGenerator
	// Events may be nil.
	Events EventLogger
}

// Controller owns the state store and sequences every action as
// mutate, persist, render. It is not safe for concurrent use; hosts that
// dispatch from several goroutines must serialise calls.
type Controller struct {
	store    *Store
	persist  storage.StateStore
	renderer *render.Renderer
	events   EventLogger
	loaded   storage.LoadResult
	pending  bool
	closed   bool
}

// NewController loads the persisted state and builds a controller around
// it. Recovery from a malformed payload is silent; its event is recorded
// when the recovered state is first saved.
func NewController(opts ControllerOpts) (*Controller, error) {
	if opts.Persist == nil {
		return nil, fmt.Errorf("creating controller: persistence is required")
	}
	res, err := opts.Persist.Load()
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	c := &Controller{
		store:    NewStore(res.State, opts.IDs),
		persist:  opts.Persist,
		renderer: render.NewRenderer(opts.View),
		events:   opts.Events,
		loaded:   res,
		pending:  res.Recovery != storage.RecoveryNone,
	}
	return c, nil
}

// Start performs the initial full render.
func (c *Controller) Start() {
	c.renderer.RenderAll(c.store.State())
}

// Close detaches the view. Later actions fail with ErrClosed. The event
// logger is owned by the caller and stays open.
func (c *Controller) Close() error {
	c.closed = true
	c.renderer = render.NewRenderer(nil)
	return nil
}

// Store exposes the state store for read helpers.
func (c *Controller) Store() *Store {
	return c.store
}

// State returns the live state; callers must not modify it.
func (c *Controller) State() *models.AppState {
	return c.store.State()
}

// LoadResult reports how the state was obtained at construction.
func (c *Controller) LoadResult() storage.LoadResult {
	return c.loaded
}

// AddList creates and selects a list.
func (c *Controller) AddList(name string) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		scope := c.store.AddList(name)
		data := map[string]any{}
		if l := c.store.ActiveList(); l != nil {
			data["list_id"] = l.ID
			data["name"] = l.Name
		}
		return scope, "list.added", data
	})
}

// DeleteActiveList removes the selected list once confirm agrees.
func (c *Controller) DeleteActiveList(confirm Confirmer) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		data := map[string]any{}
		if l := c.store.ActiveList(); l != nil {
			data["list_id"] = l.ID
			data["items"] = len(l.Items)
		}
		return c.store.DeleteActiveList(confirm), "list.deleted", data
	})
}

// SetActiveList selects an existing list.
func (c *Controller) SetActiveList(listID string) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		return c.store.SetActiveList(listID), "list.selected", map[string]any{"list_id": listID}
	})
}

// AddItem appends an item to the active list.
func (c *Controller) AddItem(text string) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		scope := c.store.AddItem(text)
		data := map[string]any{"list_id": c.State().ActiveID()}
		if l := c.store.ActiveList(); l != nil && len(l.Items) > 0 {
			data["item_id"] = l.Items[len(l.Items)-1].ID
		}
		return scope, "item.added", data
	})
}

// ToggleItem flips an item's done flag.
func (c *Controller) ToggleItem(itemID string) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		scope := c.store.ToggleItem(itemID)
		data := map[string]any{"list_id": c.State().ActiveID(), "item_id": itemID}
		if it := c.store.findItem(itemID); it != nil {
			data["done"] = it.Done
		}
		return scope, "item.toggled", data
	})
}

// SetItemDone sets an item's done flag.
func (c *Controller) SetItemDone(itemID string, done bool) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		data := map[string]any{"list_id": c.State().ActiveID(), "item_id": itemID, "done": done}
		return c.store.SetItemDone(itemID, done), "item.toggled", data
	})
}

// DeleteItem removes an item from the active list.
func (c *Controller) DeleteItem(itemID string) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		data := map[string]any{"list_id": c.State().ActiveID(), "item_id": itemID}
		return c.store.DeleteItem(itemID), "item.deleted", data
	})
}

// ClearCompleted removes done items from the active list.
func (c *Controller) ClearCompleted() error {
	return c.do(func() (render.Scope, string, map[string]any) {
		before := 0
		if l := c.store.ActiveList(); l != nil {
			before = len(l.Items)
		}
		scope := c.store.ClearCompleted()
		after := 0
		if l := c.store.ActiveList(); l != nil {
			after = len(l.Items)
		}
		data := map[string]any{"list_id": c.State().ActiveID(), "removed": before - after}
		return scope, "items.cleared", data
	})
}

// SetFilter changes the visible-item filter.
func (c *Controller) SetFilter(f models.Filter) error {
	return c.do(func() (render.Scope, string, map[string]any) {
		return c.store.SetFilter(f), "filter.changed", map[string]any{"filter": string(f)}
	})
}

// do runs mutate and, when it changed something, persists the new state and
// renders the affected fragments. A persistence failure is returned without
// rendering.
func (c *Controller) do(mutate func() (render.Scope, string, map[string]any)) error {
	if c.closed {
		return ErrClosed
	}
	scope, eventType, data := mutate()
	if scope == render.ScopeNone {
		return nil
	}
	if err := c.persist.Save(c.store.State()); err != nil {
		return err
	}
	c.logRecovery()
	c.renderer.Render(scope, c.store.State())
	c.logEvent(eventType, data)
	return nil
}

// logRecovery records how a malformed payload was recovered, once, after the
// recovered state has replaced it in storage.
func (c *Controller) logRecovery() {
	if !c.pending {
		return
	}
	c.pending = false
	LogRecovery(c.events, c.loaded)
}

// LogRecovery records a state.reset or state.repaired event for res. It does
// nothing when res needed no recovery or events is nil.
func LogRecovery(events EventLogger, res storage.LoadResult) {
	if events == nil {
		return
	}
	switch res.Recovery {
	case storage.RecoveryReset:
		_ = events.LogEvent("state.reset", map[string]any{"reason": res.Reason})
	case storage.RecoveryRepaired:
		_ = events.LogEvent("state.repaired", map[string]any{"reason": res.Reason})
	}
}

func (c *Controller) logEvent(eventType string, data map[string]any) {
	if c.events == nil {
		return
	}
	// Event logging is best-effort.
	_ = c.events.LogEvent(eventType, data)
}
