package planner

import (
	"maps"
	"slices"

	"github.com/S-Leuthold/echo/internal/block"
)

// MergePlan combines authoritative blocks (anchors and fixed) with extra
// blocks, usually LLM-proposed flex blocks, into one schedule ordered by
// start time. Any overlap is fatal and reported as a *block.OverlapError;
// nothing is moved or trimmed. Neither input is modified.
func MergePlan(partial, extra []block.Block) ([]block.Block, error) {
	combined := make([]block.Block, 0, len(partial)+len(extra))
	combined = append(combined, partial...)
	combined = append(combined, extra...)

	for _, b := range combined {
		if !b.Start.Before(b.End) {
			return nil, &block.FormatError{Context: b.Label, Raw: b.Span(), Err: block.ErrEndBeforeStart}
		}
	}

	merged := block.Sort(combined)
	if err := block.CheckOverlaps("", block.Intervals(merged)); err != nil {
		return nil, err
	}

	for i := range merged {
		merged[i].Metadata = maps.Clone(merged[i].Metadata)
	}
	return merged, nil
}

// IsSorted reports whether blocks are in non-decreasing start order.
func IsSorted(blocks []block.Block) bool {
	return slices.IsSortedFunc(blocks, func(a, b block.Block) int {
		return a.Start.Minutes() - b.Start.Minutes()
	})
}
