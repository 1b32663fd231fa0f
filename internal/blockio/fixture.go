package blockio

import (
	"encoding/json"
	"fmt"
	"os"
)

// fixtureFile is the convenience on-disk shape MemStore can load: a JSON
// document naming per-key x/y/z arrays (already split into blocks) plus any
// identifier arrays, standing in for a real upstream reader binding
// (out of scope per spec.md §1).
type fixtureFile struct {
	Variables map[string]struct {
		Blocks []struct {
			X []float64 `json:"x"`
			Y []float64 `json:"y"`
			Z []float64 `json:"z"`
		} `json:"blocks"`
	} `json:"variables"`
	Identifiers map[string][]uint64 `json:"identifiers"`
}

// LoadMemStoreFile parses the JSON fixture format at path into a MemStore.
// This is the CLI's local fixture-file convenience mode, not a production
// simulation-data reader binding.
func LoadMemStoreFile(path string) (*MemStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blockio: reading fixture %q: %w", path, err)
	}

	var doc fixtureFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("blockio: parsing fixture %q: %w", path, err)
	}

	store := NewMemStore()
	for key, v := range doc.Variables {
		for _, blk := range v.Blocks {
			store.AddBlock(key, blk.X, blk.Y, blk.Z)
		}
	}
	for idKey, ids := range doc.Identifiers {
		store.SetIdentifiers(idKey, ids)
	}
	return store, nil
}
