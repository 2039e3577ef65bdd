package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event types written by the controller.
const (
	EventListAdded     = "list.added"
	EventListDeleted   = "list.deleted"
	EventListSelected  = "list.selected"
	EventItemAdded     = "item.added"
	EventItemToggled   = "item.toggled"
	EventItemDeleted   = "item.deleted"
	EventItemsCleared  = "items.cleared"
	EventFilterChanged = "filter.changed"
	EventStateReset    = "state.reset"
	EventStateRepaired = "state.repaired"
)

// Event is one line of the action log.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// LevelFor returns the level an event type is recorded at. State recovery is
// a warning; everything else is informational.
func LevelFor(eventType string) string {
	switch eventType {
	case EventStateReset, EventStateRepaired:
		return "WARN"
	default:
		return "INFO"
	}
}

// EventFilter narrows Read to a time window, a type or a level. Zero fields
// match everything.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// Matches reports whether e passes every set criterion.
func (f EventFilter) Matches(e Event) bool {
	switch {
	case f.Since != nil && e.Time.Before(*f.Since):
		return false
	case f.Until != nil && e.Time.After(*f.Until):
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.Level != "" && e.Level != f.Level:
		return false
	}
	return true
}

// EventLog stores tl actions and reads them back for stats.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// actionLog appends one JSON object per line to .tl_events.jsonl.
type actionLog struct {
	path string
	mu   sync.Mutex
	out  *os.File
}

// NewJSONLEventLog opens (or creates) the action log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &actionLog{path: path, out: out}, nil
}

func (l *actionLog) Write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns the logged events that match filter, oldest first. Lines that
// do not decode are skipped. A missing log reads as empty.
func (l *actionLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		if json.Unmarshal(sc.Bytes(), &e) != nil {
			continue
		}
		if filter.Matches(e) {
			events = append(events, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	return events, nil
}

func (l *actionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}
