package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestLoadMissingFile(t *testing.T) {
	s := NewFileStore()
	var out []record
	if err := s.Load(filepath.Join(t.TempDir(), "nope.json"), &out); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty sequence, got %d records", len(out))
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "records.json")

	in := []record{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	if err := s.Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out []record
	if err := s.Load(path, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "1" || out[1].Name != "b" {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}
}

func TestLoadCorruptedFile(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	var out []record
	err := s.Load(path, &out)
	if !errors.Is(err, ErrCorrupted) {
		t.Fatalf("expected ErrCorrupted, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out []record
	if err := s.Load(path, &out); err != nil {
		t.Fatalf("empty file should load as empty sequence: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty sequence, got %d", len(out))
	}
}

func TestSaveReplacesContents(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "records.json")

	if err := s.Save(path, []record{{ID: "1"}, {ID: "2"}, {ID: "3"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(path, []record{{ID: "9"}}); err != nil {
		t.Fatal(err)
	}

	var out []record
	if err := s.Load(path, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "9" {
		t.Fatalf("save did not replace contents: %+v", out)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := NewFileStore()
	dir := t.TempDir()
	if err := s.Save(filepath.Join(dir, "records.json"), []record{{ID: "1"}}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "records.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}

// N个并发的追加写必须得到N条记录（每个路径一把锁保证进程内不丢更新）
func TestConcurrentUpdatesLoseNothing(t *testing.T) {
	s := NewFileStore()
	path := filepath.Join(t.TempDir(), "records.json")

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Update(path, func() error {
				var recs []record
				if err := s.Load(path, &recs); err != nil {
					return err
				}
				recs = append(recs, record{ID: string(rune('A' + i%26))})
				return s.Save(path, recs)
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	var out []record
	if err := s.Load(path, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != n {
		t.Fatalf("lost updates: expected %d records, got %d", n, len(out))
	}
}
