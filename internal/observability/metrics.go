package observability

import (
	"fmt"
	"time"
)

// Metrics holds usage statistics derived from the event log.
type Metrics struct {
	ListsCreated   int        `json:"lists_created"`
	ListsDeleted   int        `json:"lists_deleted"`
	ItemsAdded     int        `json:"items_added"`
	ItemsCompleted int        `json:"items_completed"`
	ItemsReopened  int        `json:"items_reopened"`
	ItemsDeleted   int        `json:"items_deleted"`
	ItemsCleared   int        `json:"items_cleared"`
	StateResets    int        `json:"state_resets"`
	StateRepairs   int        `json:"state_repairs"`
	EventCount     int        `json:"event_count"`
	OldestEvent    *time.Time `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventCount: len(events)}

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventListAdded:
			m.ListsCreated++
		case EventListDeleted:
			m.ListsDeleted++
		case EventItemAdded:
			m.ItemsAdded++
		case EventItemToggled:
			if done, ok := event.Data["done"].(bool); ok {
				if done {
					m.ItemsCompleted++
				} else {
					m.ItemsReopened++
				}
			}
		case EventItemDeleted:
			m.ItemsDeleted++
		case EventItemsCleared:
			// JSON numbers decode as float64.
			if n, ok := event.Data["removed"].(float64); ok {
				m.ItemsCleared += int(n)
			}
		case EventStateReset:
			m.StateResets++
		case EventStateRepaired:
			m.StateRepairs++
		}
	}

	return m, nil
}
