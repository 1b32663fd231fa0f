package storage

import "fmt"

// Kind selects a storage backend by name (spec.md §6 CLI surface: -d
// file|kv). Unknown values are a configuration error raised by NewBuilder
// and NewReader, never a silent fallback (spec.md §9 Design Notes).
type Kind string

const (
	KindFile Kind = "file"
	KindKV   Kind = "kv"
)

// Writer is the common append/close contract both backends implement.
type Writer interface {
	Put(key string, record []byte) error
	Close() error
}

// Reader is the common lookup/close contract both backends implement, and
// the interface rtree.Source/minmax.Source are satisfied by.
type Reader interface {
	Get(key string) ([]byte, error)
	Close() error
}

// NewBuilder opens a Writer of the given kind at path (a file path for
// KindFile, a directory for KindKV).
func NewBuilder(kind Kind, path string) (Writer, error) {
	switch kind {
	case KindFile:
		return NewFileBuilder(path)
	case KindKV:
		return NewKVBuilder(path)
	default:
		return nil, fmt.Errorf("storage: unknown backend kind %q", kind)
	}
}

// NewReader opens a Reader of the given kind at path.
func NewReader(kind Kind, path string) (Reader, error) {
	switch kind {
	case KindFile:
		return OpenFileReader(path)
	case KindKV:
		return OpenKVReader(path)
	default:
		return nil, fmt.Errorf("storage: unknown backend kind %q", kind)
	}
}

// ParseKind validates a backend name from CLI flags.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFile, KindKV:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("storage: unknown backend %q, want %q or %q", s, KindFile, KindKV)
	}
}
