package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/tasklists/pkg/models"
)

// failingKV returns err from every call.
type failingKV struct {
	err error
}

func (f *failingKV) Get(string) (string, bool, error) { return "", false, f.err }
func (f *failingKV) Set(string, string) error         { return f.err }

func newStoreWithSlot(t *testing.T, raw string) StateStore {
	t.Helper()
	kv := NewMemoryKVStore()
	if err := kv.Set(DefaultStateKey, raw); err != nil {
		t.Fatal(err)
	}
	return NewStateStore(kv, "")
}

func TestStateStore_LoadAbsentSlot(t *testing.T) {
	st := NewStateStore(NewMemoryKVStore(), "")
	res, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Recovery != RecoveryNone {
		t.Errorf("Recovery = %q, want %q", res.Recovery, RecoveryNone)
	}
	if len(res.State.Lists) != 0 || res.State.ActiveListID != nil || res.State.Filter != models.FilterAll {
		t.Errorf("state = %+v, want default", res.State)
	}
}

func TestStateStore_LoadEmptySlot(t *testing.T) {
	res, err := newStoreWithSlot(t, "").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Recovery != RecoveryNone || len(res.State.Lists) != 0 {
		t.Errorf("empty slot should load the default state, got %+v (%s)", res.State, res.Recovery)
	}
}

func TestStateStore_LoadCorruptPayloads(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		recovery   Recovery
		wantLists  int
		wantFilter models.Filter
		wantActive string
	}{
		{"not JSON", "{oops", RecoveryReset, 0, models.FilterAll, ""},
		{"JSON null", "null", RecoveryReset, 0, models.FilterAll, ""},
		{"top-level array", "[]", RecoveryReset, 0, models.FilterAll, ""},
		{"top-level string", `"state"`, RecoveryReset, 0, models.FilterAll, ""},
		{"numeric activeListId", `{"lists":[],"activeListId":5,"filter":"all"}`, RecoveryReset, 0, models.FilterAll, ""},
		{"numeric filter", `{"lists":[],"activeListId":null,"filter":3}`, RecoveryReset, 0, models.FilterAll, ""},
		{"wrong item field type", `{"lists":[{"id":"a","name":"A","items":[{"id":"i","text":"t","done":"yes"}]}],"activeListId":"a","filter":"all"}`, RecoveryReset, 0, models.FilterAll, ""},
		{"numeric list id", `{"lists":[{"id":1,"name":"A","items":[]}],"activeListId":null,"filter":"all"}`, RecoveryReset, 0, models.FilterAll, ""},
		{"lists is an object", `{"lists":{},"activeListId":null,"filter":"done"}`, RecoveryRepaired, 0, models.FilterDone, ""},
		{"lists is a string", `{"lists":"x","activeListId":"a","filter":"active"}`, RecoveryRepaired, 0, models.FilterActive, "a"},
		{"filter missing", `{"lists":[{"id":"a","name":"A","items":[]}],"activeListId":"a"}`, RecoveryRepaired, 1, models.FilterAll, "a"},
		{"filter null", `{"lists":[],"activeListId":null,"filter":null}`, RecoveryRepaired, 0, models.FilterAll, ""},
		{"empty object", `{}`, RecoveryRepaired, 0, models.FilterAll, ""},
		{"unknown filter passes through", `{"lists":[],"activeListId":null,"filter":"weird"}`, RecoveryNone, 0, models.Filter("weird"), ""},
		{"dangling selection passes through", `{"lists":[],"activeListId":"gone","filter":"all"}`, RecoveryNone, 0, models.FilterAll, "gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newStoreWithSlot(t, tt.raw).Load()
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if res.Recovery != tt.recovery {
				t.Errorf("Recovery = %q, want %q (reason %q)", res.Recovery, tt.recovery, res.Reason)
			}
			if tt.recovery != RecoveryNone && res.Reason == "" {
				t.Error("expected a recovery reason")
			}
			if res.State.Lists == nil {
				t.Error("Lists should never be nil")
			}
			if len(res.State.Lists) != tt.wantLists {
				t.Errorf("len(Lists) = %d, want %d", len(res.State.Lists), tt.wantLists)
			}
			if res.State.Filter != tt.wantFilter {
				t.Errorf("Filter = %q, want %q", res.State.Filter, tt.wantFilter)
			}
			if res.State.ActiveID() != tt.wantActive {
				t.Errorf("ActiveID = %q, want %q", res.State.ActiveID(), tt.wantActive)
			}
		})
	}
}

func TestStateStore_LoadIgnoresUnknownFields(t *testing.T) {
	kv := NewMemoryKVStore()
	_ = kv.Set(DefaultStateKey, `{"lists":[],"activeListId":null,"filter":"all","theme":"dark"}`)
	st := NewStateStore(kv, "")

	res, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Recovery != RecoveryNone {
		t.Errorf("Recovery = %q, want none", res.Recovery)
	}
	if err := st.Save(res.State); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _, _ := kv.Get(DefaultStateKey)
	if strings.Contains(raw, "theme") {
		t.Errorf("unknown field survived save: %s", raw)
	}
}

func TestStateStore_NullItemsBecomeEmpty(t *testing.T) {
	res, err := newStoreWithSlot(t, `{"lists":[{"id":"a","name":"A","items":null}],"activeListId":"a","filter":"all"}`).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.State.Lists[0].Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
}

func TestStateStore_SaveWritesExactLayout(t *testing.T) {
	kv := NewMemoryKVStore()
	st := NewStateStore(kv, "custom:key")

	state := &models.AppState{
		Lists: []models.TaskList{{
			ID:    "l1",
			Name:  "Home",
			Items: []models.TaskItem{{ID: "i1", Text: "Paint", Done: false}},
		}},
		ActiveListID: models.StringPtr("l1"),
		Filter:       models.FilterActive,
	}
	if err := st.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, ok, _ := kv.Get("custom:key")
	if !ok {
		t.Fatal("state not written under custom:key")
	}
	want := `{"lists":[{"id":"l1","name":"Home","items":[{"id":"i1","text":"Paint","done":false}]}],"activeListId":"l1","filter":"active"}`
	if raw != want {
		t.Errorf("saved = %s\nwant    %s", raw, want)
	}
	if _, ok, _ := kv.Get(DefaultStateKey); ok {
		t.Error("default key should be untouched")
	}
}

func TestStateStore_SaveNilLists(t *testing.T) {
	kv := NewMemoryKVStore()
	st := NewStateStore(kv, "")
	if err := st.Save(&models.AppState{Filter: models.FilterAll}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _, _ := kv.Get(DefaultStateKey)
	if raw != `{"lists":[],"activeListId":null,"filter":"all"}` {
		t.Errorf("saved = %s", raw)
	}
}

func TestStateStore_StorageFaults(t *testing.T) {
	boom := errors.New("disk full")
	st := NewStateStore(&failingKV{err: boom}, "")

	if _, err := st.Load(); !errors.Is(err, boom) {
		t.Errorf("Load error = %v, want wrapping %v", err, boom)
	}
	if err := st.Save(models.DefaultState()); !errors.Is(err, boom) {
		t.Errorf("Save error = %v, want wrapping %v", err, boom)
	}
	if _, _, err := st.Raw(); !errors.Is(err, boom) {
		t.Errorf("Raw error = %v, want wrapping %v", err, boom)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPath string
		wantMsg  string
	}{
		{"valid", `{"lists":[{"id":"a","name":"A","items":[{"id":"i","text":"t","done":true}]}],"activeListId":"a","filter":"done"}`, "", ""},
		{"invalid JSON", `{`, "", "invalid JSON"},
		{"missing filter", `{"lists":[],"activeListId":null}`, "", "filter"},
		{"bad done type", `{"lists":[{"id":"a","name":"A","items":[{"id":"i","text":"t","done":"no"}]}],"activeListId":"a","filter":"all"}`, "lists[0].items[0].done", ""},
		{"duplicate list id", `{"lists":[{"id":"a","name":"A","items":[]},{"id":"a","name":"B","items":[]}],"activeListId":"a","filter":"all"}`, "lists[1].id", "duplicate list id"},
		{"duplicate item id", `{"lists":[{"id":"a","name":"A","items":[{"id":"i","text":"x","done":false}]},{"id":"b","name":"B","items":[{"id":"i","text":"y","done":false}]}],"activeListId":"a","filter":"all"}`, "lists[1].items[0].id", "duplicate item id"},
		{"dangling selection", `{"lists":[],"activeListId":"gone","filter":"all"}`, "activeListId", "unknown list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems, err := Validate(tt.raw)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if tt.wantPath == "" && tt.wantMsg == "" {
				if len(problems) != 0 {
					t.Errorf("expected no problems, got %v", problems)
				}
				return
			}
			if len(problems) == 0 {
				t.Fatal("expected problems, got none")
			}
			found := false
			for _, p := range problems {
				if tt.wantPath != "" && p.Path != tt.wantPath {
					continue
				}
				if tt.wantMsg != "" && !strings.Contains(p.String(), tt.wantMsg) {
					continue
				}
				found = true
			}
			if !found {
				t.Errorf("no problem matching path %q / message %q in %v", tt.wantPath, tt.wantMsg, problems)
			}
		})
	}
}

func TestPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"/activeListId":     "activeListId",
		"/lists/0":          "lists[0]",
		"/lists/0/items/12": "lists[0].items[12]",
		"/a~1b/c~0d":        "a/b.c~d",
	}
	for in, want := range tests {
		if got := pointerToPath(in); got != want {
			t.Errorf("pointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalise(t *testing.T) {
	home := models.TaskList{ID: "l1", Name: "Home", Items: []models.TaskItem{}}
	tests := []struct {
		name       string
		state      models.AppState
		wantFixed  string
		wantActive string
		wantFilter models.Filter
	}{
		{
			name:       "clean state untouched",
			state:      models.AppState{Lists: []models.TaskList{home}, ActiveListID: models.StringPtr("l1"), Filter: models.FilterDone},
			wantActive: "l1",
			wantFilter: models.FilterDone,
		},
		{
			name:       "dangling selection cleared",
			state:      models.AppState{Lists: []models.TaskList{home}, ActiveListID: models.StringPtr("gone"), Filter: models.FilterAll},
			wantFixed:  "activeListId",
			wantFilter: models.FilterAll,
		},
		{
			name:       "unknown filter reset",
			state:      models.AppState{Lists: []models.TaskList{}, Filter: "weird"},
			wantFixed:  "filter",
			wantFilter: models.FilterAll,
		},
		{
			name:       "both",
			state:      models.AppState{Lists: []models.TaskList{}, ActiveListID: models.StringPtr("gone"), Filter: ""},
			wantFixed:  "activeListId,filter",
			wantFilter: models.FilterAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.state
			fixed := Normalise(&state)
			if got := strings.Join(fixed, ","); got != tt.wantFixed {
				t.Errorf("fixed = %q, want %q", got, tt.wantFixed)
			}
			if state.ActiveID() != tt.wantActive {
				t.Errorf("activeListId = %q, want %q", state.ActiveID(), tt.wantActive)
			}
			if state.Filter != tt.wantFilter {
				t.Errorf("filter = %q, want %q", state.Filter, tt.wantFilter)
			}
		})
	}
}
