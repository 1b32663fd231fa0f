package minmax

import (
	"fmt"
	"strconv"
	"sync"
)

// SecondaryNone and SecondaryMinMax name the two supported secondary-index
// modes (spec.md §4.2); "none" produces exact block extrema, "minmax"
// slices each block into inblockSliceSize windows.
const (
	SecondaryNone   = "none"
	SecondaryMinMax = "minmax"
)

// Builder accumulates per-key MinMax state across concurrently processed
// blocks. It implements pipeline.Processor.
type Builder struct {
	secondary        string
	inblockSliceSize int

	mu      sync.Mutex
	primary map[string]*List

	muSecondary sync.Mutex
	secondaryM  map[string]*List
}

// NewBuilder constructs a Builder. secondary must be SecondaryNone or
// SecondaryMinMax; inblockSliceSize is only consulted when secondary is
// SecondaryMinMax.
func NewBuilder(secondary string, inblockSliceSize int) (*Builder, error) {
	if secondary != SecondaryNone && secondary != SecondaryMinMax {
		return nil, fmt.Errorf("minmax: unsupported secondary index type %q", secondary)
	}
	if inblockSliceSize <= 0 {
		inblockSliceSize = 1000
	}
	return &Builder{
		secondary:        secondary,
		inblockSliceSize: inblockSliceSize,
		primary:          make(map[string]*List),
		secondaryM:       make(map[string]*List),
	}, nil
}

// ProcessAxis folds one axis array of a block into the per-key MinMax state.
// key should already carry the axis suffix (e.g. ".../position/x").
func (b *Builder) ProcessAxis(key string, data []float64, start, end uint64) {
	if len(data) == 0 {
		return
	}

	node := Node{Start: start, End: end}

	if b.secondary == SecondaryNone {
		node.Min, node.Max = data[0], data[0]
		for _, v := range data[1:] {
			if v < node.Min {
				node.Min = v
			}
			if v > node.Max {
				node.Max = v
			}
		}
	} else {
		node.Min, node.Max = PositiveInfinity, NegativeInfinity
		secondaryKey := key + strconv.FormatUint(start, 10)

		for i := 0; i < len(data); i += b.inblockSliceSize {
			j := i + b.inblockSliceSize
			if j > len(data) {
				j = len(data)
			}
			window := data[i:j]

			wMin, wMax := window[0], window[0]
			for _, v := range window[1:] {
				if v < wMin {
					wMin = v
				}
				if v > wMax {
					wMax = v
				}
			}
			wNode := Node{
				Min:   wMin,
				Max:   wMax,
				Start: start + uint64(i),
				End:   minU64(start+uint64(j), end),
			}

			func() {
				b.muSecondary.Lock()
				defer b.muSecondary.Unlock()
				l := b.secondaryM[secondaryKey]
				if l == nil {
					l = &List{}
					b.secondaryM[secondaryKey] = l
				}
				l.Nodes = append(l.Nodes, wNode)
			}()

			if wMin < node.Min {
				node.Min = wMin
			}
			if wMax > node.Max {
				node.Max = wMax
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	l := b.primary[key]
	if l == nil {
		l = &List{}
		b.primary[key] = l
	}
	l.Nodes = append(l.Nodes, node)
}

// Primary returns the accumulated primary map. It is only safe to call
// after all producers have finished calling ProcessAxis.
func (b *Builder) Primary() map[string]*List { return b.primary }

// Secondary returns the accumulated secondary (intra-block) map, empty when
// the builder was constructed with SecondaryNone.
func (b *Builder) Secondary() map[string]*List { return b.secondaryM }

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
