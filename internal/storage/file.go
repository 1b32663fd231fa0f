package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// FileBuilder appends opaque records to a single file and, at Close, writes
// the trailing MetaDataListForFile catalog plus the 8-byte little-endian
// catalog-length suffix (spec.md §6, "Persisted file layout"). Grounded on
// sst/writer.go's footer discipline; simplified to a single data-block
// region since index records here are already self-contained.
type FileBuilder struct {
	mu      sync.Mutex
	file    *os.File
	cursor  uint64
	catalog Catalog
	closed  bool
}

// NewFileBuilder creates (truncating any existing contents of) the file at
// path for writing.
func NewFileBuilder(path string) (*FileBuilder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %q for write: %w", path, err)
	}
	return &FileBuilder{file: f}, nil
}

// Put appends record under key, recording its byte offset and length in the
// in-memory catalog.
func (b *FileBuilder) Put(key string, record []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("storage: put on closed file builder")
	}
	n, err := b.file.Write(record)
	if err != nil {
		return fmt.Errorf("storage: writing record for key %q: %w", key, err)
	}
	b.catalog.Entries = append(b.catalog.Entries, CatalogEntry{
		Key:       key,
		StartByte: b.cursor,
		Length:    uint64(n),
	})
	b.cursor += uint64(n)
	return nil
}

// Close writes the catalog and trailing length suffix, then closes the
// underlying file. Close is idempotent.
func (b *FileBuilder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	encoded := b.catalog.Encode()
	if _, err := b.file.Write(encoded); err != nil {
		return fmt.Errorf("storage: writing catalog: %w", err)
	}
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(encoded)))
	if _, err := b.file.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("storage: writing catalog length suffix: %w", err)
	}
	return b.file.Close()
}

// FileReader opens a persisted index file and serves Get by key via the
// recovered catalog. Readers seek to file_size-8 (spec.md §8 invariant) to
// avoid scanning payload bytes.
type FileReader struct {
	file    *os.File
	catalog *Catalog
}

// OpenFileReader opens path, recovers its trailing catalog, and returns a
// reader ready to serve Get.
func OpenFileReader(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %q for read: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat %q: %w", path, err)
	}
	size := info.Size()
	if size < 8 {
		f.Close()
		return nil, fmt.Errorf("storage: file %q too short to contain a catalog length suffix", path)
	}

	var lenBuf [8]byte
	if _, err := f.ReadAt(lenBuf[:], size-8); err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: reading catalog length suffix from %q: %w", path, err)
	}
	catalogLen := binary.LittleEndian.Uint64(lenBuf[:])
	catalogStart := size - 8 - int64(catalogLen)
	if catalogStart < 0 {
		f.Close()
		return nil, fmt.Errorf("storage: file %q declares catalog length %d larger than the file", path, catalogLen)
	}

	catalogBytes := make([]byte, catalogLen)
	if _, err := f.ReadAt(catalogBytes, catalogStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: reading catalog from %q: %w", path, err)
	}
	catalog, err := DecodeCatalog(catalogBytes)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: decoding catalog from %q: %w", path, err)
	}

	return &FileReader{file: f, catalog: catalog}, nil
}

// Get implements rtree.Source and minmax.Source: metadata-missing keys
// return an error the caller is expected to treat as "not found" (spec.md
// §7).
func (r *FileReader) Get(key string) ([]byte, error) {
	entry, ok := r.catalog.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("storage: key %q not present in catalog: %w", key, ErrNotFound)
	}
	buf := make([]byte, entry.Length)
	if _, err := r.file.ReadAt(buf, int64(entry.StartByte)); err != nil {
		return nil, fmt.Errorf("storage: reading record for key %q: %w", key, err)
	}
	return buf, nil
}

// Keys returns every key present in the recovered catalog, in catalog
// order.
func (r *FileReader) Keys() []string {
	keys := make([]string, len(r.catalog.Entries))
	for i, e := range r.catalog.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Close closes the underlying file.
func (r *FileReader) Close() error {
	return r.file.Close()
}
