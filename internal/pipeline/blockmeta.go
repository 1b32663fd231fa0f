package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/geosindex/geosindexgo/internal/blockio"
)

// WriteBlockMeta writes the "<index_base>.blockmeta" sidecar: a
// newline-terminated CSV of iteration,start,count triples, one row per
// block in reader iteration order (spec.md §6, "Sidecar").
func WriteBlockMeta(path string, iteration int, blocks []blockio.BlockInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: creating blockmeta sidecar %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, blk := range blocks {
		if _, err := w.WriteString(strconv.Itoa(iteration)); err != nil {
			return fmt.Errorf("pipeline: writing blockmeta sidecar %q: %w", path, err)
		}
		if _, err := w.WriteString(","); err != nil {
			return err
		}
		if _, err := w.WriteString(strconv.FormatUint(blk.Start, 10)); err != nil {
			return err
		}
		if _, err := w.WriteString(","); err != nil {
			return err
		}
		if _, err := w.WriteString(strconv.FormatUint(blk.Count, 10)); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
