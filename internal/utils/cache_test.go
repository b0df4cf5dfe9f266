package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Clock.swift")
	writeFile(t, path, "protocol Clock {}\n")

	cache := NewCache[string, string]()
	if err := cache.SetWithFileInfo(path, "first", path); err != nil {
		t.Fatalf("SetWithFileInfo failed: %v", err)
	}

	value, ok := cache.GetWithFileValidation(path, path)
	if !ok || value != "first" {
		t.Fatalf("expected cached value 'first', got %q (hit=%v)", value, ok)
	}

	// a different size invalidates the entry even within the mtime granularity
	writeFile(t, path, "protocol Clock {\n    func now() -> Date\n}\n")
	if _, ok := cache.GetWithFileValidation(path, path); ok {
		t.Error("expected a miss after the file changed")
	}
	if cache.Size() != 0 {
		t.Errorf("expected the stale entry to be evicted, size is %d", cache.Size())
	}
}

func TestCache_ModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Clock.swift")
	writeFile(t, path, "protocol A {}\n")

	cache := NewCache[string, int]()
	if err := cache.SetWithFileInfo("clock", 1, path); err != nil {
		t.Fatalf("SetWithFileInfo failed: %v", err)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if _, ok := cache.GetWithFileValidation("clock", path); ok {
		t.Error("expected a miss after the modification time changed")
	}
}

func TestCache_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gone.swift")

	cache := NewCache[string, int]()
	if err := cache.SetWithFileInfo("gone", 1, path); err == nil {
		t.Error("expected an error for a missing file")
	}

	writeFile(t, path, "x")
	if err := cache.SetWithFileInfo("gone", 1, path); err != nil {
		t.Fatalf("SetWithFileInfo failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := cache.GetWithFileValidation("gone", path); ok {
		t.Error("expected a miss once the file is deleted")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache[string, int]()

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("f%d.swift", i))
		writeFile(t, path, "x")
		if err := cache.SetWithFileInfo(path, i, path); err != nil {
			t.Fatalf("SetWithFileInfo failed: %v", err)
		}
	}
	if cache.Size() != 3 {
		t.Errorf("expected size 3, got %d", cache.Size())
	}

	cache.Delete(filepath.Join(dir, "f0.swift"))
	if cache.Size() != 2 {
		t.Errorf("expected size 2 after delete, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", cache.Size())
	}
}

func TestCache_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Shared.swift")
	writeFile(t, path, "protocol Shared {}\n")

	cache := NewCache[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.SetWithFileInfo(i%5, i, path)
			cache.GetWithFileValidation(i%5, path)
		}()
	}
	wg.Wait()

	if cache.Size() != 5 {
		t.Errorf("expected 5 keys, got %d", cache.Size())
	}
}
