// Package bloomfilter builds, probes, and merges compact membership filters
// over 64-bit particle identifiers. It wraps github.com/bits-and-blooms/bloom/v3,
// the same library FlashLogGo's sst package already uses for its per-segment
// filter, but constructs it from an explicit (bits, probes) pair instead of a
// target false-positive rate so that the bits_per_key/max_size_bits sizing
// rule below is reproduced exactly.
package bloomfilter

import (
	"bytes"
	"encoding/binary"
	"math"

	bloom "github.com/bits-and-blooms/bloom/v3"
)

// DefaultMaxSizeBits mirrors original_source's Constant.h max_bf_size (1e9).
const DefaultMaxSizeBits = 1_000_000_000

// Filter is a probabilistic set membership test over 64-bit keys.
// A nil *Filter (or one built from zero keys) is treated as "accept all",
// per spec's Open Question (c): an empty filter must never cause a false
// negative.
type Filter struct {
	bf *bloom.BloomFilter
}

// numProbes returns k = clamp(floor(bitsPerKey * ln2), 1, 30).
func numProbes(bitsPerKey uint) uint {
	k := uint(math.Floor(float64(bitsPerKey) * math.Ln2))
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return k
}

// numBits returns min(bitsPerKey*n, maxSizeBits), floored at 1 bit.
func numBits(bitsPerKey uint, n int, maxSizeBits uint) uint {
	m := bitsPerKey * uint(n)
	if m == 0 || m > maxSizeBits {
		if maxSizeBits == 0 {
			return 1
		}
		if m == 0 {
			return 1
		}
		m = maxSizeBits
	}
	return m
}

func encodeKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

// Build constructs a filter over keys sized by bitsPerKey and capped at
// maxSizeBits total bits.
func Build(keys []uint64, bitsPerKey uint, maxSizeBits uint) *Filter {
	if len(keys) == 0 {
		// No keys: an empty filter, which accepts everything.
		return &Filter{}
	}
	k := numProbes(bitsPerKey)
	m := numBits(bitsPerKey, len(keys), maxSizeBits)
	bf := bloom.New(m, k)
	for _, key := range keys {
		bf.Add(encodeKey(key))
	}
	return &Filter{bf: bf}
}

// MayContain reports whether key is possibly in the filter's build set.
// A miss is a definite absence; a hit is "probably present". A filter with
// no stored bits (nil or empty) accepts everything, so pruning never
// produces a false negative.
func (f *Filter) MayContain(id uint64) bool {
	if f == nil || f.bf == nil || f.bf.Cap() == 0 {
		return true
	}
	return f.bf.Test(encodeKey(id))
}

// Merge combines two filters of equal length by bitwise OR, in place on the
// receiver. The combined filter accepts any key either input accepted.
func (f *Filter) Merge(other *Filter) error {
	if other == nil || other.bf == nil {
		return nil
	}
	if f.bf == nil {
		f.bf = other.bf.Copy()
		return nil
	}
	return f.bf.Merge(other.bf)
}

// MarshalBinary serializes the filter's bit array and hash-probe count.
func (f *Filter) MarshalBinary() ([]byte, error) {
	if f == nil || f.bf == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if _, err := f.bf.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFilter reconstructs a filter from bytes produced by MarshalBinary.
// An empty byte slice yields an accept-all filter.
func UnmarshalFilter(data []byte) (*Filter, error) {
	if len(data) == 0 {
		return &Filter{}, nil
	}
	bf := &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Filter{bf: bf}, nil
}
