package blockio

import (
	"context"
	"fmt"
)

// Variable holds one attribute-axis's full backing array plus the block
// boundaries the upstream writer assigned it.
type Variable struct {
	Data   []float64
	Blocks []BlockInfo
}

// MemStore is an in-memory Store used by tests and by the CLI when no real
// upstream reader binding is configured. It is not a substitute for ADIOS2
// or any other production simulation-data reader.
type MemStore struct {
	axes        map[string]*Variable // key -> "x"/"y"/"z" resolved by caller as key+"x" etc.
	identifiers map[string][]uint64  // id key -> full array
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		axes:        make(map[string]*Variable),
		identifiers: make(map[string][]uint64),
	}
}

// AddBlock appends one block's x/y/z data under key (without axis suffix)
// and records the block boundary. Blocks must be added in reader order.
func (m *MemStore) AddBlock(key string, x, y, z []float64) {
	start := uint64(0)
	if v, ok := m.axes[key+"x"]; ok && len(v.Blocks) > 0 {
		last := v.Blocks[len(v.Blocks)-1]
		start = last.Start + last.Count
	}
	count := uint64(len(x))
	for axis, data := range map[string][]float64{"x": x, "y": y, "z": z} {
		full := key + axis
		v, ok := m.axes[full]
		if !ok {
			v = &Variable{}
			m.axes[full] = v
		}
		v.Data = append(v.Data, data...)
		v.Blocks = append(v.Blocks, BlockInfo{Start: start, Count: count})
	}
}

// SetIdentifiers installs the full particle identifier array for idKey.
func (m *MemStore) SetIdentifiers(idKey string, ids []uint64) {
	m.identifiers[idKey] = ids
}

func (m *MemStore) AvailableVariables(ctx context.Context) (map[string]VariableParams, error) {
	out := make(map[string]VariableParams, len(m.axes))
	for key, v := range m.axes {
		out[key] = VariableParams{Shape: []uint64{uint64(len(v.Data))}}
	}
	return out, nil
}

func (m *MemStore) BlocksInfo(ctx context.Context, key string) ([]BlockInfo, error) {
	v, ok := m.axes[key+"x"]
	if !ok {
		return nil, fmt.Errorf("blockio: unknown key %q", key)
	}
	return v.Blocks, nil
}

func (m *MemStore) ReadBlockAxes(ctx context.Context, key string, start, count uint64) (x, y, z []float64, err error) {
	read := func(axis string) ([]float64, error) {
		v, ok := m.axes[key+axis]
		if !ok {
			return nil, fmt.Errorf("blockio: unknown key %q", key+axis)
		}
		if start+count > uint64(len(v.Data)) {
			return nil, fmt.Errorf("blockio: range [%d,%d) out of bounds for key %q (len %d)", start, start+count, key+axis, len(v.Data))
		}
		out := make([]float64, count)
		copy(out, v.Data[start:start+count])
		return out, nil
	}
	if x, err = read("x"); err != nil {
		return nil, nil, nil, err
	}
	if y, err = read("y"); err != nil {
		return nil, nil, nil, err
	}
	if z, err = read("z"); err != nil {
		return nil, nil, nil, err
	}
	return x, y, z, nil
}

func (m *MemStore) ReadIdentifiers(ctx context.Context, key string, start, count uint64) ([]uint64, error) {
	ids, ok := m.identifiers[key]
	if !ok {
		return nil, fmt.Errorf("blockio: unknown identifier key %q", key)
	}
	if start+count > uint64(len(ids)) {
		return nil, fmt.Errorf("blockio: identifier range [%d,%d) out of bounds for key %q", start, start+count, key)
	}
	out := make([]uint64, count)
	copy(out, ids[start:start+count])
	return out, nil
}
