package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestKVBuilderAndReader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ns")

	b, err := NewKVBuilder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put("/k/x", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put("/k/x0", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenKVReader(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	v, err := r.Get("/k/x")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "v1" {
		t.Fatalf("expected v1, got %q", v)
	}

	if _, err := r.Get("/missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	keys, err := r.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
}

func TestKVBuilderWipesExistingNamespace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ns")

	b1, err := NewKVBuilder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := b1.Put("stale", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := b1.Close(); err != nil {
		t.Fatal(err)
	}

	b2, err := NewKVBuilder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := b2.Put("fresh", []byte("new")); err != nil {
		t.Fatal(err)
	}
	if err := b2.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenKVReader(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Get("stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected stale key to be wiped, got err=%v", err)
	}
	v, err := r.Get("fresh")
	if err != nil || string(v) != "new" {
		t.Fatalf("expected fresh=new, got %q err=%v", v, err)
	}
}

func TestBackendDispatch(t *testing.T) {
	if _, err := ParseKind("file"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKind("kv"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseKind("rocksdb"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
