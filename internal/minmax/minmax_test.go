package minmax

import "testing"

type memSource map[string][]byte

func (m memSource) Get(key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

func TestMinMaxRangeOneBlock(t *testing.T) {
	b, err := NewBuilder(SecondaryNone, 0)
	if err != nil {
		t.Fatal(err)
	}
	b.ProcessAxis("/k/x", []float64{1.0, 2.0, 3.0}, 0, 3)

	src := memSource{"/k/x": b.Primary()["/k/x"].Encode()}
	results, err := Query(src, nil, "/k/x", 1.5, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r, ok := results["0"]
	if !ok {
		t.Fatalf("expected key \"0\", got %+v", results)
	}
	if r.Start != 0 || r.End != 3 || len(r.SubSlices) != 0 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestMinMaxSecondarySlicing(t *testing.T) {
	b, err := NewBuilder(SecondaryMinMax, 2)
	if err != nil {
		t.Fatal(err)
	}
	b.ProcessAxis("/k/x", []float64{1.0, 2.0, 3.0}, 0, 3)

	src := memSource{"/k/x": b.Primary()["/k/x"].Encode()}
	secSrc := memSource{"/k/x0": b.Secondary()["/k/x0"].Encode()}

	results, err := Query(src, secSrc, "/k/x", 1.5, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := results["0"]
	if !ok {
		t.Fatalf("expected primary key \"0\", got %+v", results)
	}
	if len(r.SubSlices) != 1 {
		t.Fatalf("expected exactly one sub-slice, got %+v", r.SubSlices)
	}
	s, ok := r.SubSlices["0"]
	if !ok || s.Start != 0 || s.End != 2 {
		t.Fatalf("expected sub-slice \"0\"=(0,2), got %+v", r.SubSlices)
	}
	if _, ok := r.SubSlices["2"]; ok {
		t.Fatalf("window starting at 2 (value 3.0) should not overlap 1.5..2.5")
	}
}

func TestMinMaxEncodeDecodeRoundTrip(t *testing.T) {
	l := List{Nodes: []Node{{Min: 1, Max: 2, Start: 0, End: 5}, {Min: -1, Max: 9, Start: 5, End: 10}}}
	got, err := Decode(l.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 2 || got.Nodes[0] != l.Nodes[0] || got.Nodes[1] != l.Nodes[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
