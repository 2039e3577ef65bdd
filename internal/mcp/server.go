// Package mcp provides an MCP (Model Context Protocol) server that exposes
// tl lists and tasks as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/observability"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// Server wraps a tl controller and exposes it as MCP tools. Tool calls are
// serialised; the controller itself is single-threaded.
type Server struct {
	server      *gomcp.Server
	mu          sync.Mutex
	ctrl        *core.Controller
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server around ctrl. metricsCalc may be nil if
// the event log is disabled.
func NewServer(ctrl *core.Controller, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		ctrl:        ctrl,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tl", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type listSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

type listListsInput struct{}

type listListsOutput struct {
	Lists        []listSummary `json:"lists"`
	Count        int           `json:"count"`
	ActiveListID string        `json:"active_list_id,omitempty"`
}

type itemOutput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type getListInput struct {
	List string `json:"list,omitempty" jsonschema:"list id, name or unique id prefix. Defaults to the selected list."`
}

type listOutput struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Active    bool         `json:"active"`
	Filter    string       `json:"filter"`
	Items     []itemOutput `json:"items"`
	Visible   []itemOutput `json:"visible"`
	Remaining int          `json:"remaining"`
}

type addListInput struct {
	Name string `json:"name" jsonschema:"required,name of the new list. The new list becomes selected."`
}

type selectListInput struct {
	List string `json:"list" jsonschema:"required,list id, name or unique id prefix"`
}

type addItemInput struct {
	Text string `json:"text" jsonschema:"required,task text, added to the selected list"`
}

type itemRefInput struct {
	ItemID string `json:"item_id" jsonschema:"required,item id or unique id prefix within the selected list"`
}

type clearCompletedInput struct{}

type setFilterInput struct {
	Filter string `json:"filter" jsonschema:"required,one of all, active, done"`
}

type getStatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type statsOutput struct {
	ListsCreated   int    `json:"lists_created"`
	ListsDeleted   int    `json:"lists_deleted"`
	ItemsAdded     int    `json:"items_added"`
	ItemsCompleted int    `json:"items_completed"`
	ItemsReopened  int    `json:"items_reopened"`
	ItemsDeleted   int    `json:"items_deleted"`
	ItemsCleared   int    `json:"items_cleared"`
	EventCount     int    `json:"event_count"`
	OldestEvent    string `json:"oldest_event,omitempty"`
	NewestEvent    string `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_lists",
		Description: "List every task list in creation order with its task counts and whether it is selected.",
	}, s.handleListLists)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_list",
		Description: "Get a list with all its tasks and the tasks visible under the current filter.",
	}, s.handleGetList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_list",
		Description: "Create a task list and select it.",
	}, s.handleAddList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "select_list",
		Description: "Select an existing list. Task tools act on the selected list.",
	}, s.handleSelectList)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_item",
		Description: "Add a task to the selected list.",
	}, s.handleAddItem)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_item",
		Description: "Flip a task in the selected list between done and not done.",
	}, s.handleToggleItem)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_item",
		Description: "Delete a task from the selected list.",
	}, s.handleDeleteItem)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "clear_completed",
		Description: "Remove every done task from the selected list.",
	}, s.handleClearCompleted)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "set_filter",
		Description: "Set which tasks are visible: all, active or done.",
	}, s.handleSetFilter)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Get activity counts from the event log: lists created and deleted, tasks added, completed and cleared.",
	}, s.handleGetStats)
}

// --- Tool handlers ---

func (s *Server) handleListLists(_ context.Context, _ *gomcp.CallToolRequest, _ listListsInput) (*gomcp.CallToolResult, listListsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ctrl.State()
	out := listListsOutput{
		Lists:        make([]listSummary, len(state.Lists)),
		Count:        len(state.Lists),
		ActiveListID: state.ActiveID(),
	}
	for i, l := range state.Lists {
		out.Lists[i] = listSummary{
			ID:        l.ID,
			Name:      l.Name,
			Active:    l.ID == state.ActiveID(),
			Total:     len(l.Items),
			Remaining: l.Remaining(),
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetList(_ context.Context, _ *gomcp.CallToolRequest, input getListInput) (*gomcp.CallToolResult, listOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list *models.TaskList
	if strings.TrimSpace(input.List) == "" {
		list = s.ctrl.Store().ActiveList()
		if list == nil {
			return errorResult("no list selected"), listOutput{}, nil
		}
	} else {
		var err error
		list, err = s.ctrl.Store().FindList(input.List)
		if err != nil {
			return errorResult(fmt.Sprintf("getting list: %s", err)), listOutput{}, nil
		}
	}
	return nil, s.listToOutput(list), nil
}

func (s *Server) handleAddList(_ context.Context, _ *gomcp.CallToolRequest, input addListInput) (*gomcp.CallToolResult, listOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return errorResult("name is required"), listOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.AddList(input.Name); err != nil {
		return errorResult(fmt.Sprintf("adding list: %s", err)), listOutput{}, nil
	}
	return nil, s.listToOutput(s.ctrl.Store().ActiveList()), nil
}

func (s *Server) handleSelectList(_ context.Context, _ *gomcp.CallToolRequest, input selectListInput) (*gomcp.CallToolResult, listOutput, error) {
	if strings.TrimSpace(input.List) == "" {
		return errorResult("list is required"), listOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.ctrl.Store().FindList(input.List)
	if err != nil {
		return errorResult(fmt.Sprintf("selecting list: %s", err)), listOutput{}, nil
	}
	if err := s.ctrl.SetActiveList(list.ID); err != nil {
		return errorResult(fmt.Sprintf("selecting list: %s", err)), listOutput{}, nil
	}
	return nil, s.listToOutput(s.ctrl.Store().ActiveList()), nil
}

func (s *Server) handleAddItem(_ context.Context, _ *gomcp.CallToolRequest, input addItemInput) (*gomcp.CallToolResult, listOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), listOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Store().ActiveList() == nil {
		return errorResult("no list selected"), listOutput{}, nil
	}
	if err := s.ctrl.AddItem(input.Text); err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), listOutput{}, nil
	}
	return nil, s.listToOutput(s.ctrl.Store().ActiveList()), nil
}

func (s *Server) handleToggleItem(_ context.Context, _ *gomcp.CallToolRequest, input itemRefInput) (*gomcp.CallToolResult, listOutput, error) {
	return s.withItem(input.ItemID, "toggling task", s.ctrl.ToggleItem)
}

func (s *Server) handleDeleteItem(_ context.Context, _ *gomcp.CallToolRequest, input itemRefInput) (*gomcp.CallToolResult, listOutput, error) {
	return s.withItem(input.ItemID, "deleting task", s.ctrl.DeleteItem)
}

func (s *Server) handleClearCompleted(_ context.Context, _ *gomcp.CallToolRequest, _ clearCompletedInput) (*gomcp.CallToolResult, listOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Store().ActiveList() == nil {
		return errorResult("no list selected"), listOutput{}, nil
	}
	if err := s.ctrl.ClearCompleted(); err != nil {
		return errorResult(fmt.Sprintf("clearing completed tasks: %s", err)), listOutput{}, nil
	}
	return nil, s.listToOutput(s.ctrl.Store().ActiveList()), nil
}

func (s *Server) handleSetFilter(_ context.Context, _ *gomcp.CallToolRequest, input setFilterInput) (*gomcp.CallToolResult, listOutput, error) {
	f, err := models.ParseFilter(input.Filter)
	if err != nil {
		return errorResult(err.Error()), listOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.SetFilter(f); err != nil {
		return errorResult(fmt.Sprintf("setting filter: %s", err)), listOutput{}, nil
	}
	list := s.ctrl.Store().ActiveList()
	if list == nil {
		return nil, listOutput{Filter: string(f), Items: []itemOutput{}, Visible: []itemOutput{}}, nil
	}
	return nil, s.listToOutput(list), nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, input getStatsInput) (*gomcp.CallToolResult, statsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (the event log may be disabled)"), statsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), statsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), statsOutput{}, nil
	}

	out := statsOutput{
		ListsCreated:   metrics.ListsCreated,
		ListsDeleted:   metrics.ListsDeleted,
		ItemsAdded:     metrics.ItemsAdded,
		ItemsCompleted: metrics.ItemsCompleted,
		ItemsReopened:  metrics.ItemsReopened,
		ItemsDeleted:   metrics.ItemsDeleted,
		ItemsCleared:   metrics.ItemsCleared,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// withItem resolves ref in the selected list and applies action to its id.
func (s *Server) withItem(ref, what string, action func(itemID string) error) (*gomcp.CallToolResult, listOutput, error) {
	if strings.TrimSpace(ref) == "" {
		return errorResult("item_id is required"), listOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.ctrl.Store().FindItem(ref)
	if err != nil {
		return errorResult(fmt.Sprintf("%s: %s", what, err)), listOutput{}, nil
	}
	if err := action(item.ID); err != nil {
		return errorResult(fmt.Sprintf("%s: %s", what, err)), listOutput{}, nil
	}
	return nil, s.listToOutput(s.ctrl.Store().ActiveList()), nil
}

func (s *Server) listToOutput(l *models.TaskList) listOutput {
	state := s.ctrl.State()
	out := listOutput{
		ID:        l.ID,
		Name:      l.Name,
		Active:    l.ID == state.ActiveID(),
		Filter:    string(state.Filter),
		Items:     itemsToOutput(l.Items),
		Visible:   itemsToOutput(state.Filter.Apply(l.Items)),
		Remaining: l.Remaining(),
	}
	return out
}

func itemsToOutput(items []models.TaskItem) []itemOutput {
	out := make([]itemOutput, len(items))
	for i, it := range items {
		out[i] = itemOutput{ID: it.ID, Text: it.Text, Done: it.Done}
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
