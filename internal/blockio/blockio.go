// Package blockio defines the upstream simulation-data reader interface
// (spec.md §6, "Upstream reader interface (consumed)") and a small
// in-memory reference implementation used by tests, the CLI's convenience
// local JSON fixture file mode, and nothing else: the real upstream reader (ADIOS2
// or equivalent) is out of scope per spec.md §1 and is treated here purely
// as an external collaborator behind this interface.
package blockio

import "context"

// VariableParams describes one available variable as reported by the
// upstream reader's available_variables().
type VariableParams struct {
	Shape []uint64
}

// BlockInfo is one block's particle range, as reported by
// all_steps_blocks_info() for a single iteration.
type BlockInfo struct {
	Start uint64
	Count uint64
}

// BlockData is one block's x/y/z component arrays for a single particle
// attribute (position or momentum), sliced along the particle dimension.
type BlockData struct {
	X, Y, Z    []float64
	Start, End uint64
	Key        string
}

// BatchReadJob describes a contiguous run of blocks to be read in one
// ranged fetch (spec.md §4.1).
type BatchReadJob struct {
	Start, Count      uint64
	Key               string
	ParticleCharacter string
}

// Store is the upstream simulation-data reader interface. A single
// concrete implementation must support concurrent Get-style issuance
// followed by one flush per spec.md §6; ReadBlockAxes below hides that
// deferred/perform-gets protocol behind a single call.
type Store interface {
	// AvailableVariables returns every variable name the store currently
	// exposes, keyed exactly as the upstream reader names them (e.g.
	// "/data/500/particles/electrons/position/x").
	AvailableVariables(ctx context.Context) (map[string]VariableParams, error)

	// BlocksInfo returns the block inventory for the x-axis variable at
	// key+"x", in writer order.
	BlocksInfo(ctx context.Context, key string) ([]BlockInfo, error)

	// ReadBlockAxes reads the x/y/z component arrays for [start, start+count)
	// at key, internally issuing three deferred gets followed by one
	// perform_gets (spec.md §6).
	ReadBlockAxes(ctx context.Context, key string, start, count uint64) (x, y, z []float64, err error)

	// ReadIdentifiers reads the particle identifier array for
	// [start, start+count) at key.
	ReadIdentifiers(ctx context.Context, key string, start, count uint64) ([]uint64, error)
}
