// Package storage persists tl application state into a key-value slot and
// provides the file-backed key-value host used by the CLI and TUI.
package storage

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// DefaultStateKey is the slot the application state is stored under.
const DefaultStateKey = "todoApp:state:v1"

//go:embed schema/*.json
var schemaFS embed.FS

const (
	shapeSchemaURL = "tl://schema/state_shape.json"
	fullSchemaURL  = "tl://schema/state_full.json"
)

var (
	schemaOnce  sync.Once
	shapeSchema *jsonschema.Schema
	fullSchema  *jsonschema.Schema
	schemaErr   error
)

func compileSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for url, file := range map[string]string{
			shapeSchemaURL: "schema/state_shape.json",
			fullSchemaURL:  "schema/state_full.json",
		} {
			data, err := schemaFS.ReadFile(file)
			if err != nil {
				schemaErr = fmt.Errorf("reading %s: %w", file, err)
				return
			}
			if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
				schemaErr = fmt.Errorf("adding schema %s: %w", file, err)
				return
			}
		}
		if shapeSchema, schemaErr = compiler.Compile(shapeSchemaURL); schemaErr != nil {
			schemaErr = fmt.Errorf("compiling shape schema: %w", schemaErr)
			return
		}
		if fullSchema, schemaErr = compiler.Compile(fullSchemaURL); schemaErr != nil {
			schemaErr = fmt.Errorf("compiling state schema: %w", schemaErr)
		}
	})
	return shapeSchema, fullSchema, schemaErr
}

// Recovery describes how a stored payload was turned into state.
type Recovery string

const (
	// RecoveryNone means the payload was absent or loaded as-is.
	RecoveryNone Recovery = "none"
	// RecoveryRepaired means lists or filter were coerced to defaults.
	RecoveryRepaired Recovery = "repaired"
	// RecoveryReset means the payload was unusable and defaults were returned.
	RecoveryReset Recovery = "reset"
)

// LoadResult is the outcome of StateStore.Load.
type LoadResult struct {
	State    *models.AppState
	Recovery Recovery
	// Reason explains a repair or reset; empty when Recovery is RecoveryNone.
	Reason string
}

// StateStore serialises AppState to and from a single KVStore slot.
type StateStore interface {
	Load() (LoadResult, error)
	Save(state *models.AppState) error
	// Raw returns the stored payload without interpreting it.
	Raw() (string, bool, error)
}

type kvStateStore struct {
	kv  KVStore
	key string
}

// NewStateStore creates a StateStore that keeps state under key in kv.
// An empty key selects DefaultStateKey.
func NewStateStore(kv KVStore, key string) StateStore {
	if key == "" {
		key = DefaultStateKey
	}
	return &kvStateStore{kv: kv, key: key}
}

func (s *kvStateStore) Raw() (string, bool, error) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return "", false, fmt.Errorf("reading state slot %q: %w", s.key, err)
	}
	return raw, ok, nil
}

// Load reads the slot. Absent data yields the default state. Invalid JSON or
// a malformed top level resets to defaults; a non-array lists field or a
// missing filter is repaired in place and everything else passes through.
func (s *kvStateStore) Load() (LoadResult, error) {
	raw, ok, err := s.Raw()
	if err != nil {
		return LoadResult{}, err
	}
	if !ok || raw == "" {
		return LoadResult{State: models.DefaultState(), Recovery: RecoveryNone}, nil
	}
	return decodeState([]byte(raw))
}

func decodeState(raw []byte) (LoadResult, error) {
	reset := func(reason string) (LoadResult, error) {
		return LoadResult{State: models.DefaultState(), Recovery: RecoveryReset, Reason: reason}, nil
	}

	shape, _, err := compileSchemas()
	if err != nil {
		return LoadResult{}, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return reset("invalid JSON: " + err.Error())
	}
	if err := shape.Validate(doc); err != nil {
		return reset("malformed top level: " + summariseSchemaError(err))
	}

	obj := doc.(map[string]any)
	var repairs []string
	if _, isList := obj["lists"].([]any); !isList {
		obj["lists"] = []any{}
		repairs = append(repairs, "lists")
	}
	if f, present := obj["filter"]; !present || f == nil {
		obj["filter"] = string(models.FilterAll)
		repairs = append(repairs, "filter")
	}

	normalised, err := json.Marshal(obj)
	if err != nil {
		return reset("re-encoding: " + err.Error())
	}
	var state models.AppState
	if err := json.Unmarshal(normalised, &state); err != nil {
		return reset("decoding state: " + err.Error())
	}
	if state.Lists == nil {
		state.Lists = []models.TaskList{}
	}
	for i := range state.Lists {
		if state.Lists[i].Items == nil {
			state.Lists[i].Items = []models.TaskItem{}
		}
	}

	if len(repairs) > 0 {
		return LoadResult{
			State:    &state,
			Recovery: RecoveryRepaired,
			Reason:   "defaulted " + strings.Join(repairs, ", "),
		}, nil
	}
	return LoadResult{State: &state, Recovery: RecoveryNone}, nil
}

// Save overwrites the slot with the full state.
func (s *kvStateStore) Save(state *models.AppState) error {
	out := *state
	if out.Lists == nil {
		out.Lists = []models.TaskList{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("saving state: marshalling JSON: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Normalise clears the values Load deliberately passes through: a selection
// that refers to no list and a filter outside the known set. It returns the
// fields it changed.
func Normalise(state *models.AppState) []string {
	var fixed []string
	if state.ActiveListID != nil && state.ActiveList() == nil {
		state.ActiveListID = nil
		fixed = append(fixed, "activeListId")
	}
	if !state.Filter.Valid() {
		state.Filter = models.FilterAll
		fixed = append(fixed, "filter")
	}
	return fixed
}

// Problem is a single finding from Validate.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// Validate checks a raw payload against the full state schema and the
// referential rules (unique ids, active list exists). It never modifies
// anything; Load remains the authority on what is actually recovered.
func Validate(raw string) ([]Problem, error) {
	_, full, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return []Problem{{Message: "invalid JSON: " + err.Error()}}, nil
	}

	var problems []Problem
	if err := full.Validate(doc); err != nil {
		problems = append(problems, schemaProblems(err)...)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return problems, nil
	}
	lists, _ := obj["lists"].([]any)
	listIDs := make(map[string]bool)
	itemIDs := make(map[string]bool)
	for i, l := range lists {
		lm, ok := l.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := lm["id"].(string); ok {
			if listIDs[id] {
				problems = append(problems, Problem{Path: fmt.Sprintf("lists[%d].id", i), Message: fmt.Sprintf("duplicate list id %q", id)})
			}
			listIDs[id] = true
		}
		items, _ := lm["items"].([]any)
		for j, it := range items {
			im, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := im["id"].(string); ok {
				if itemIDs[id] {
					problems = append(problems, Problem{Path: fmt.Sprintf("lists[%d].items[%d].id", i, j), Message: fmt.Sprintf("duplicate item id %q", id)})
				}
				itemIDs[id] = true
			}
		}
	}
	if active, ok := obj["activeListId"].(string); ok && !listIDs[active] {
		problems = append(problems, Problem{Path: "activeListId", Message: fmt.Sprintf("references unknown list %q", active)})
	}
	return problems, nil
}

func schemaProblems(err error) []Problem {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Problem{{Message: err.Error()}}
	}
	var out []Problem
	collectLeafErrors(ve, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func collectLeafErrors(ve *jsonschema.ValidationError, out *[]Problem) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Problem{Path: pointerToPath(ve.InstanceLocation), Message: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectLeafErrors(c, out)
	}
}

func summariseSchemaError(err error) string {
	problems := schemaProblems(err)
	parts := make([]string, len(problems))
	for i, p := range problems {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

// pointerToPath turns a JSON pointer such as /lists/0/items/2 into
// lists[0].items[2].
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, seg := range strings.Split(ptr, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
