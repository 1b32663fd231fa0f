package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFileFooterRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	b, err := NewFileBuilder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put("/k/x", []byte("record-one")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put("/k/x0", []byte("record-two-longer")); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenFileReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	v, err := r.Get("/k/x")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "record-one" {
		t.Fatalf("expected record-one, got %q", v)
	}

	v2, err := r.Get("/k/x0")
	if err != nil {
		t.Fatal(err)
	}
	if string(v2) != "record-two-longer" {
		t.Fatalf("expected record-two-longer, got %q", v2)
	}
}

func TestFileReaderMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	b, err := NewFileBuilder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put("/k/x", []byte("only")); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenFileReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Get("/missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBuildingTwiceYieldsIdenticalCatalogs(t *testing.T) {
	build := func(path string) *Catalog {
		b, err := NewFileBuilder(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := b.Put("/k/x", []byte("aaaa")); err != nil {
			t.Fatal(err)
		}
		if err := b.Put("/k/x0", []byte("bb")); err != nil {
			t.Fatal(err)
		}
		if err := b.Close(); err != nil {
			t.Fatal(err)
		}
		r, err := OpenFileReader(path)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		return r.catalog
	}

	dir := t.TempDir()
	first := build(filepath.Join(dir, "a.bin"))
	second := build(filepath.Join(dir, "b.bin"))

	if len(first.Entries) != len(second.Entries) {
		t.Fatalf("expected identical entry counts, got %d vs %d", len(first.Entries), len(second.Entries))
	}
	byKey := func(c *Catalog) map[string]CatalogEntry {
		m := make(map[string]CatalogEntry)
		for _, e := range c.Entries {
			m[e.Key] = e
		}
		return m
	}
	a, bm := byKey(first), byKey(second)
	for k, ea := range a {
		eb, ok := bm[k]
		if !ok || ea.Length != eb.Length || ea.StartByte != eb.StartByte {
			t.Fatalf("mismatch for key %q: %+v vs %+v", k, ea, eb)
		}
	}
}
