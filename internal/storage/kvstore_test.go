package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileKVStore_GetMissingFile(t *testing.T) {
	kv := NewFileKVStore(filepath.Join(t.TempDir(), "storage.json"))

	v, ok, err := kv.Get("anything")
	if err != nil {
		t.Fatalf("Get on missing file: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get = (%q, %v), want (\"\", false)", v, ok)
	}
}

func TestFileKVStore_SetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "storage.json")
	kv := NewFileKVStore(path)

	if err := kv.Set("a", `{"x":1}`); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := kv.Set("b", "plain"); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	if err := kv.Set("a", "replaced"); err != nil {
		t.Fatalf("Set a again: %v", err)
	}

	// A fresh store over the same file sees both slots.
	kv2 := NewFileKVStore(path)
	for key, want := range map[string]string{"a": "replaced", "b": "plain"} {
		got, ok, err := kv2.Get(key)
		if err != nil {
			t.Fatalf("Get %s: %v", key, err)
		}
		if !ok || got != want {
			t.Errorf("Get %s = (%q, %v), want (%q, true)", key, got, ok, want)
		}
	}

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestFileKVStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	kv := NewFileKVStore(path)

	if _, _, err := kv.Get("k"); err == nil {
		t.Error("expected error reading corrupt storage file")
	}
	if err := kv.Set("k", "v"); err == nil {
		t.Error("expected error writing over corrupt storage file")
	}
}

func TestFileKVStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	kv := NewFileKVStore(path)

	if _, ok, err := kv.Get("k"); err != nil || ok {
		t.Errorf("Get on empty file = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestFileKVStore_ConcurrentSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kv := NewFileKVStore(path)
			if err := kv.Set(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Set: %v", err)
	}

	kv := NewFileKVStore(path)
	for i := 0; i < writers; i++ {
		got, ok, err := kv.Get(fmt.Sprintf("key-%d", i))
		if err != nil || !ok || got != fmt.Sprintf("value-%d", i) {
			t.Errorf("key-%d = (%q, %v, %v)", i, got, ok, err)
		}
	}
}

func TestMemoryKVStore(t *testing.T) {
	kv := NewMemoryKVStore()
	if _, ok, _ := kv.Get("k"); ok {
		t.Error("empty store should not contain k")
	}
	if err := kv.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok, _ := kv.Get("k"); !ok || got != "v" {
		t.Errorf("Get = (%q, %v), want (v, true)", got, ok)
	}
}
