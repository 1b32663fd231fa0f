package bloomfilter

import "testing"

func TestBuildProbeNoFalseNegatives(t *testing.T) {
	keys := []uint64{1, 2, 3, 42, 1000}
	f := Build(keys, 10, DefaultMaxSizeBits)
	for _, k := range keys {
		if !f.MayContain(k) {
			t.Fatalf("expected MayContain(%d) to be true after Build", k)
		}
	}
}

func TestEmptyFilterAcceptsAll(t *testing.T) {
	var f *Filter
	if !f.MayContain(123) {
		t.Fatal("expected nil filter to accept all")
	}

	empty := Build(nil, 10, DefaultMaxSizeBits)
	if !empty.MayContain(456) {
		t.Fatal("expected zero-key filter to accept all")
	}
}

func TestMergeIsCommutativeAndUnion(t *testing.T) {
	a := Build([]uint64{1, 2}, 10, DefaultMaxSizeBits)
	b := Build([]uint64{3, 4}, 10, DefaultMaxSizeBits)

	aEncoded, _ := a.MarshalBinary()
	bEncoded, _ := b.MarshalBinary()

	ab, _ := UnmarshalFilter(aEncoded)
	if err := ab.Merge(b); err != nil {
		t.Fatal(err)
	}
	ba, _ := UnmarshalFilter(bEncoded)
	if err := ba.Merge(a); err != nil {
		t.Fatal(err)
	}

	for _, id := range []uint64{1, 2, 3, 4} {
		if !ab.MayContain(id) {
			t.Fatalf("expected merged filter to contain %d", id)
		}
		if ab.MayContain(id) != ba.MayContain(id) {
			t.Fatalf("merge not commutative for id %d", id)
		}
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f := Build([]uint64{7, 8, 9}, 10, DefaultMaxSizeBits)
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalFilter(data)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []uint64{7, 8, 9} {
		if !got.MayContain(id) {
			t.Fatalf("expected round-tripped filter to contain %d", id)
		}
	}
}

func TestNumProbesClamped(t *testing.T) {
	if k := numProbes(1); k != 1 {
		t.Fatalf("expected clamp to 1, got %d", k)
	}
	if k := numProbes(1000); k != 30 {
		t.Fatalf("expected clamp to 30, got %d", k)
	}
}
