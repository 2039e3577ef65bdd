package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// =============================================================================
// Property: Toggle events split into completed and reopened
// =============================================================================

// *For any* sequence of item.toggled events carrying a done flag, the
// MetricsCalculator SHALL report ItemsCompleted equal to the number of
// done=true events and ItemsReopened equal to the number of done=false events.
func TestProperty_MetricsToggleSplit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		el, err := NewJSONLEventLog(filepath.Join(dir, "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

		wantDone, wantReopened := 0, 0
		for i := 0; i < numEvents; i++ {
			done := rapid.Bool().Draw(rt, fmt.Sprintf("done_%d", i))
			if done {
				wantDone++
			} else {
				wantReopened++
			}
			event := Event{
				Time:    baseTime.Add(time.Duration(i) * time.Minute),
				Level:   "INFO",
				Type:    EventItemToggled,
				Message: "item toggled",
				Data:    map[string]any{"item_id": fmt.Sprintf("i%d", i), "done": done},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if m.ItemsCompleted != wantDone {
			rt.Errorf("ItemsCompleted = %d, want %d", m.ItemsCompleted, wantDone)
		}
		if m.ItemsReopened != wantReopened {
			rt.Errorf("ItemsReopened = %d, want %d", m.ItemsReopened, wantReopened)
		}
	})
}

// =============================================================================
// Property: Metrics Event Count Is Total
// =============================================================================

// *For any* mix of random event types written to an event log, the
// MetricsCalculator SHALL report EventCount equal to the total number of
// events and ItemsCleared equal to the sum of the removed counts.
func TestProperty_MetricsEventCountIsTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir := t.TempDir()
		el, err := NewJSONLEventLog(filepath.Join(dir, "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		eventTypes := []string{
			EventListAdded,
			EventListDeleted,
			EventListSelected,
			EventItemAdded,
			EventItemDeleted,
			EventItemsCleared,
			EventFilterChanged,
			EventStateReset,
		}

		wantCleared := 0
		for i := 0; i < numEvents; i++ {
			eventType := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))

			data := map[string]any{}
			if eventType == EventItemsCleared {
				removed := rapid.IntRange(1, 10).Draw(rt, fmt.Sprintf("removed_%d", i))
				data["removed"] = removed
				wantCleared += removed
			}

			event := Event{
				Time:    baseTime.Add(time.Duration(hoursOffset) * time.Hour),
				Level:   LevelFor(eventType),
				Type:    eventType,
				Message: eventType,
				Data:    data,
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if m.EventCount != numEvents {
			rt.Errorf("EventCount = %d, want %d", m.EventCount, numEvents)
		}
		if m.ItemsCleared != wantCleared {
			rt.Errorf("ItemsCleared = %d, want %d", m.ItemsCleared, wantCleared)
		}
	})
}
