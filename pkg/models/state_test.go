package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"active", FilterActive, false},
		{"done", FilterDone, false},
		{"  Done ", FilterDone, false},
		{"ACTIVE", FilterActive, false},
		{"completed", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFilter(%q) expected error", tt.input)
				}
				if !strings.Contains(err.Error(), "must be one of") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilter_Label(t *testing.T) {
	if FilterAll.Label() != "All" || FilterActive.Label() != "Active" || FilterDone.Label() != "Done" {
		t.Errorf("labels = %q %q %q", FilterAll.Label(), FilterActive.Label(), FilterDone.Label())
	}
	if Filter("weird").Label() != "All" {
		t.Errorf("unknown filter label = %q, want All", Filter("weird").Label())
	}
}

func TestFilter_Apply(t *testing.T) {
	items := []TaskItem{
		{ID: "1", Text: "a", Done: false},
		{ID: "2", Text: "b", Done: true},
		{ID: "3", Text: "c", Done: false},
	}

	ids := func(its []TaskItem) string {
		var out []string
		for _, it := range its {
			out = append(out, it.ID)
		}
		return strings.Join(out, ",")
	}

	tests := []struct {
		filter Filter
		want   string
	}{
		{FilterAll, "1,2,3"},
		{FilterActive, "1,3"},
		{FilterDone, "2"},
		{Filter("unknown"), "1,2,3"},
	}
	for _, tt := range tests {
		if got := ids(tt.filter.Apply(items)); got != tt.want {
			t.Errorf("%q.Apply = %s, want %s", tt.filter, got, tt.want)
		}
	}
}

func TestAppState_ActiveList(t *testing.T) {
	s := DefaultState()
	if s.ActiveList() != nil {
		t.Error("default state should have no active list")
	}
	if s.ActiveID() != "" {
		t.Errorf("ActiveID = %q, want empty", s.ActiveID())
	}

	s.Lists = []TaskList{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	s.ActiveListID = StringPtr("b")
	if l := s.ActiveList(); l == nil || l.Name != "B" {
		t.Errorf("ActiveList = %+v, want B", l)
	}

	s.ActiveListID = StringPtr("gone")
	if s.ActiveList() != nil {
		t.Error("dangling selection should resolve to nil")
	}
	if s.ActiveID() != "gone" {
		t.Errorf("ActiveID = %q, want gone", s.ActiveID())
	}
}

func TestTaskList_Counts(t *testing.T) {
	l := TaskList{Items: []TaskItem{{Done: true}, {Done: false}, {Done: false}}}
	if l.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", l.Remaining())
	}
	if !l.HasCompleted() {
		t.Error("HasCompleted = false, want true")
	}

	empty := TaskList{}
	if empty.Remaining() != 0 || empty.HasCompleted() {
		t.Error("empty list should have nothing remaining or completed")
	}
}

func TestAppState_JSONLayout(t *testing.T) {
	s := &AppState{
		Lists:        []TaskList{{ID: "l1", Name: "Groceries", Items: []TaskItem{{ID: "i1", Text: "milk", Done: true}}}},
		ActiveListID: StringPtr("l1"),
		Filter:       FilterDone,
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"lists":[{"id":"l1","name":"Groceries","items":[{"id":"i1","text":"milk","done":true}]}],"activeListId":"l1","filter":"done"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}

	data, err = json.Marshal(DefaultState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"lists":[],"activeListId":null,"filter":"all"}` {
		t.Errorf("default json = %s", data)
	}
}
