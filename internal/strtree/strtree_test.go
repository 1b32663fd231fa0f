package strtree

import "testing"

func TestBulkLoadAndQuery(t *testing.T) {
	envs := []Envelope3d{
		{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1, Start: 0, End: 10},
		{MinX: 5, MaxX: 6, MinY: 5, MaxY: 6, MinZ: 5, MaxZ: 6, Start: 10, End: 20},
	}
	root := BulkLoad(envs, 10)
	if root == nil {
		t.Fatal("nil root")
	}
	if !root.Bounds.Contains(envs[0]) || !root.Bounds.Contains(envs[1]) {
		t.Fatalf("root bounds %+v do not contain both leaves", root.Bounds)
	}

	probe := Envelope3d{MinX: 0.5, MaxX: 0.6, MinY: 0.5, MaxY: 0.6, MinZ: 0.5, MaxZ: 0.6}
	var hits []Envelope3d
	var match func(n *Node)
	match = func(n *Node) {
		if !n.Bounds.Intersects(probe) {
			return
		}
		if n.IsLeaf() {
			hits = append(hits, n.Bounds)
			return
		}
		for _, c := range n.Children {
			match(c)
		}
	}
	match(root)

	if len(hits) != 1 || hits[0].Start != 0 || hits[0].End != 10 {
		t.Fatalf("expected one hit start=0 end=10, got %+v", hits)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	envs := make([]Envelope3d, 0, 25)
	for i := 0; i < 25; i++ {
		f := float64(i)
		envs = append(envs, Envelope3d{
			MinX: f, MaxX: f + 1, MinY: f, MaxY: f + 1, MinZ: f, MaxZ: f + 1,
			Start: uint64(i * 10), End: uint64(i*10 + 10),
			Bloom: []byte{byte(i)},
		})
	}
	root := BulkLoad(envs, 4)

	data := Serialize(root)
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	var countOrig, countGot int
	Walk(root, func(*Node) { countOrig++ })
	Walk(got, func(*Node) { countGot++ })
	if countOrig != countGot {
		t.Fatalf("node count mismatch: %d vs %d", countOrig, countGot)
	}
	if got.Bounds.MinX != root.Bounds.MinX || got.Bounds.MaxZ != root.Bounds.MaxZ ||
		got.Bounds.Start != root.Bounds.Start || got.Bounds.End != root.Bounds.End {
		t.Fatalf("root bounds mismatch after round trip: %+v vs %+v", got.Bounds, root.Bounds)
	}
}

func TestDeserializeRejectsCorruptRecord(t *testing.T) {
	root := BulkLoad([]Envelope3d{{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1, Start: 0, End: 1}}, 10)
	data := Serialize(root)
	data[0] ^= 0xFF
	if _, err := Deserialize(data); err == nil {
		t.Fatal("expected checksum error on corrupted record")
	}
}
