package blockio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMemStoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	const doc = `{
		"variables": {
			"/data/1/particles/e/position/": {
				"blocks": [
					{"x": [1,2], "y": [1,2], "z": [1,2]},
					{"x": [3,4,5], "y": [3,4,5], "z": [3,4,5]}
				]
			}
		},
		"identifiers": {
			"/data/1/particles/e/id": [10, 11, 12, 13, 14]
		}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := LoadMemStoreFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	blocks, err := store.BlocksInfo(ctx, "/data/1/particles/e/position/")
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 || blocks[1].Start != 2 || blocks[1].Count != 3 {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}

	ids, err := store.ReadIdentifiers(ctx, "/data/1/particles/e/id", 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 5 || ids[4] != 14 {
		t.Fatalf("unexpected identifiers: %v", ids)
	}
}
