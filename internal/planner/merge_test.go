package planner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/S-Leuthold/echo/internal/block"
)

func mustBlock(t *testing.T, span, label string, typ block.Type) block.Block {
	t.Helper()
	start, end, err := block.ParseSpan(span)
	if err != nil {
		t.Fatalf("ParseSpan(%q): %v", span, err)
	}
	b, err := block.New(start, end, label, typ, nil)
	if err != nil {
		t.Fatalf("block.New(%q): %v", span, err)
	}
	return b
}

func TestMergePlan_TouchingBoundary(t *testing.T) {
	partial := []block.Block{mustBlock(t, "09:00–10:00", "Anchor", block.TypeAnchor)}
	extra := []block.Block{mustBlock(t, "10:00–11:00", "Flex", block.TypeFlex)}

	merged, err := MergePlan(partial, extra)
	if err != nil {
		t.Fatalf("MergePlan() unexpected error: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(merged))
	}
	if merged[0].Label != "Anchor" || merged[1].Label != "Flex" {
		t.Errorf("order = %q, %q; want Anchor, Flex", merged[0].Label, merged[1].Label)
	}
}

func TestMergePlan_NestedFlex(t *testing.T) {
	partial := []block.Block{mustBlock(t, "09:00–10:00", "Anchor", block.TypeAnchor)}
	extra := []block.Block{mustBlock(t, "09:30–09:45", "Flex", block.TypeFlex)}

	_, err := MergePlan(partial, extra)

	var oe *block.OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("MergePlan() error = %v, want *block.OverlapError", err)
	}
	if oe.First.Label != "Anchor" || oe.Second.Label != "Flex" {
		t.Errorf("overlap = (%s, %s), want (Anchor, Flex)", oe.First.Label, oe.Second.Label)
	}
	for _, want := range []string{"Anchor", "Flex"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %q", err.Error(), want)
		}
	}
}

func TestMergePlan_NestedBehindDisjointBlock(t *testing.T) {
	// The 11:00 flex sits inside the long workshop even though the 08:00
	// coffee block sorts between them.
	partial := []block.Block{
		mustBlock(t, "08:00–12:00", "Workshop", block.TypeFixed),
		mustBlock(t, "08:00–08:10", "Coffee", block.TypeAnchor),
	}
	extra := []block.Block{mustBlock(t, "11:00–11:30", "Flex", block.TypeFlex)}

	var oe *block.OverlapError
	if _, err := MergePlan(partial, extra); !errors.As(err, &oe) {
		t.Fatalf("expected overlap, got %v", err)
	}
}

func TestMergePlan_ExtraOverlapsExtra(t *testing.T) {
	extra := []block.Block{
		mustBlock(t, "13:00–14:00", "Write", block.TypeFlex),
		mustBlock(t, "13:30–15:00", "Read", block.TypeFlex),
	}

	var oe *block.OverlapError
	if _, err := MergePlan(nil, extra); !errors.As(err, &oe) {
		t.Fatalf("expected overlap between extra blocks, got %v", err)
	}
}

func TestMergePlan_InvalidBlock(t *testing.T) {
	bad := block.Block{Start: block.NewClock(10, 0), End: block.NewClock(9, 0), Label: "Backwards", Type: block.TypeFlex}

	_, err := MergePlan(nil, []block.Block{bad})
	if !errors.Is(err, block.ErrEndBeforeStart) {
		t.Fatalf("MergePlan() error = %v, want ErrEndBeforeStart", err)
	}
}

func TestMergePlan_Empty(t *testing.T) {
	merged, err := MergePlan(nil, nil)
	if err != nil {
		t.Fatalf("MergePlan() unexpected error: %v", err)
	}
	if len(merged) != 0 {
		t.Errorf("expected empty plan, got %d blocks", len(merged))
	}
}

func TestMergePlan_Properties(t *testing.T) {
	// Disjoint inputs interleaved across the day in scrambled order.
	var partial, extra []block.Block
	for i, h := range []int{15, 6, 11, 20, 8} {
		partial = append(partial, mustBlock(t, fmt.Sprintf("%02d:00–%02d:30", h, h), fmt.Sprintf("p%d", i), block.TypeAnchor))
	}
	for i, h := range []int{9, 16, 7, 12} {
		extra = append(extra, mustBlock(t, fmt.Sprintf("%02d:30–%02d:00", h, h+1), fmt.Sprintf("x%d", i), block.TypeFlex))
	}

	merged, err := MergePlan(partial, extra)
	if err != nil {
		t.Fatalf("MergePlan() unexpected error: %v", err)
	}

	if len(merged) != len(partial)+len(extra) {
		t.Errorf("len = %d, want %d", len(merged), len(partial)+len(extra))
	}
	if !IsSorted(merged) {
		t.Error("merged plan is not sorted")
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Start.Before(merged[i-1].End) {
			t.Errorf("%q overlaps %q", merged[i].Label, merged[i-1].Label)
		}
	}

	again, err := MergePlan(merged, nil)
	if err != nil {
		t.Fatalf("re-merge unexpected error: %v", err)
	}
	for i := range merged {
		if again[i].Label != merged[i].Label {
			t.Fatalf("re-sorting changed order at %d: %q vs %q", i, again[i].Label, merged[i].Label)
		}
	}
}

func TestMergePlan_DoesNotMutateInputs(t *testing.T) {
	partial := []block.Block{mustBlock(t, "12:00–13:00", "Lunch", block.TypeFixed)}
	extra := []block.Block{
		mustBlock(t, "14:00–15:00", "Write", block.TypeFlex).WithMetadata(block.MetaProject, "echo"),
		mustBlock(t, "09:00–10:00", "Read", block.TypeFlex),
	}

	merged, err := MergePlan(partial, extra)
	if err != nil {
		t.Fatalf("MergePlan() unexpected error: %v", err)
	}

	if extra[0].Label != "Write" || extra[1].Label != "Read" {
		t.Error("MergePlan reordered its input")
	}
	merged[2].Metadata[block.MetaProject] = "changed"
	if extra[0].Meta(block.MetaProject) != "echo" {
		t.Error("merged blocks share metadata maps with the input")
	}
}
