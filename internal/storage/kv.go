package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// batchFlushThreshold bounds write-batch size during secondary-index writes
// (spec.md §4.6, "every 1,000 entries").
const batchFlushThreshold = 1000

// KVBuilder writes (key, record) pairs into a goleveldb namespace rooted at
// a directory, batching writes and flushing every batchFlushThreshold
// entries and once more at Close. Opening a builder against an existing
// namespace deletes it first (spec.md §4.6).
type KVBuilder struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	count int
}

// NewKVBuilder opens (after wiping) the goleveldb namespace at dir.
func NewKVBuilder(dir string) (*KVBuilder, error) {
	if err := wipeNamespace(dir); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: opening kv namespace %q: %w", dir, err)
	}
	return &KVBuilder{db: db, batch: new(leveldb.Batch)}, nil
}

// Put stages a (key, record) write, flushing the batch once it reaches
// batchFlushThreshold entries.
func (b *KVBuilder) Put(key string, record []byte) error {
	b.batch.Put([]byte(key), record)
	b.count++
	if b.count >= batchFlushThreshold {
		if err := b.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (b *KVBuilder) flush() error {
	if b.count == 0 {
		return nil
	}
	if err := b.db.Write(b.batch, nil); err != nil {
		return fmt.Errorf("storage: flushing kv write batch: %w", err)
	}
	b.batch = new(leveldb.Batch)
	b.count = 0
	return nil
}

// Close flushes any pending writes and closes the namespace.
func (b *KVBuilder) Close() error {
	if err := b.flush(); err != nil {
		return err
	}
	return b.db.Close()
}

// KVReader serves Get against an opened goleveldb namespace.
type KVReader struct {
	db *leveldb.DB
}

// OpenKVReader opens the goleveldb namespace at dir for reading.
func OpenKVReader(dir string) (*KVReader, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: opening kv namespace %q: %w", dir, err)
	}
	return &KVReader{db: db}, nil
}

// Get implements rtree.Source and minmax.Source.
func (r *KVReader) Get(key string) ([]byte, error) {
	v, err := r.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, fmt.Errorf("storage: key %q not present in kv namespace: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("storage: reading key %q: %w", key, err)
	}
	return v, nil
}

// Keys returns every key currently present in the namespace.
func (r *KVReader) Keys() ([]string, error) {
	iter := r.db.NewIterator(nil, nil)
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("storage: iterating kv namespace: %w", err)
	}
	return keys, nil
}

// Close closes the underlying namespace handle.
func (r *KVReader) Close() error {
	return r.db.Close()
}

// wipeNamespace deletes every key under dir's existing goleveldb namespace,
// if one exists, leaving the directory ready for a fresh build.
func wipeNamespace(dir string) error {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		// Nothing is wiped; any open failure is left for the OpenFile in
		// NewKVBuilder to report. (A missing directory does not fail here:
		// OpenFile creates it as an empty namespace.)
		return nil
	}
	defer db.Close()

	batch := new(leveldb.Batch)
	iter := db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("storage: iterating kv namespace %q for wipe: %w", dir, err)
	}
	if err := db.Write(batch, nil); err != nil {
		return fmt.Errorf("storage: wiping kv namespace %q: %w", dir, err)
	}
	return nil
}
