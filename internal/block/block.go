// Package block defines the schedule entry types and time arithmetic for echo.
package block

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Type classifies a block. Anchor and fixed blocks are imposed from outside
// and never moved while merging; flex blocks are negotiable.
type Type string

const (
	TypeAnchor Type = "anchor"
	TypeFixed  Type = "fixed"
	TypeFlex   Type = "flex"
)

// Valid returns true if the type is a known value.
func (t Type) Valid() bool {
	switch t {
	case TypeAnchor, TypeFixed, TypeFlex:
		return true
	default:
		return false
	}
}

// Immovable returns true for anchor and fixed blocks.
func (t Type) Immovable() bool {
	return t == TypeAnchor || t == TypeFixed
}

// Metadata keys set by echo.
const (
	MetaRecurrence = "recurrence"
	MetaProject    = "project"
	MetaNotes      = "notes"
)

// DefaultRecurrence is used when a configured block names no recurrence.
const DefaultRecurrence = "one-off"

// LabelDelimiter separates project and task in a "Project | Task" label.
const LabelDelimiter = "|"

// Block is a scheduled interval within a single day.
// Blocks are values; methods that change a block return a new one.
type Block struct {
	Start    Clock
	End      Clock
	Label    string
	Type     Type
	Metadata map[string]string
}

// New creates a Block, checking that start is before end.
func New(start, end Clock, label string, typ Type, metadata map[string]string) (Block, error) {
	b := Block{
		Start:    start,
		End:      end,
		Label:    label,
		Type:     typ,
		Metadata: maps.Clone(metadata),
	}
	if err := b.Validate(); err != nil {
		return Block{}, err
	}
	return b, nil
}

// Validate checks the block's type and ordering.
func (b Block) Validate() error {
	if !b.Type.Valid() {
		return fmt.Errorf("block %q: unknown type %q", b.Label, b.Type)
	}
	if !b.Start.Before(b.End) {
		return &FormatError{Context: b.Label, Raw: b.Span(), Err: ErrEndBeforeStart}
	}
	return nil
}

// Span renders the block's times as "HH:MM–HH:MM".
func (b Block) Span() string {
	return FormatSpan(b.Start, b.End)
}

// Duration returns the block length in minutes.
func (b Block) Duration() int {
	return b.End.Minutes() - b.Start.Minutes()
}

// Interval returns the block as a labelled span for overlap checks.
func (b Block) Interval() Interval {
	return Interval{Start: b.Start, End: b.End, Label: b.Label}
}

// Meta returns a metadata value, or "" when unset.
func (b Block) Meta(key string) string {
	return b.Metadata[key]
}

// WithMetadata returns a copy of b with key set to value.
// The receiver's map is left untouched.
func (b Block) WithMetadata(key, value string) Block {
	out := b
	out.Metadata = maps.Clone(b.Metadata)
	if out.Metadata == nil {
		out.Metadata = make(map[string]string, 1)
	}
	out.Metadata[key] = value
	return out
}

// SplitLabel splits a "Project | Task" label at the first delimiter.
// ok is false when the label carries no project part.
func SplitLabel(label string) (project, task string, ok bool) {
	before, after, ok := strings.Cut(label, LabelDelimiter)
	if !ok {
		return "", strings.TrimSpace(label), false
	}
	return strings.TrimSpace(before), strings.TrimSpace(after), true
}

// Project returns the project part of a "Project | Task" label,
// falling back to the project metadata key.
func (b Block) Project() string {
	if project, _, ok := SplitLabel(b.Label); ok {
		return project
	}
	return b.Meta(MetaProject)
}

// Task returns the task part of a "Project | Task" label, or the whole label.
func (b Block) Task() string {
	_, task, _ := SplitLabel(b.Label)
	return task
}

// OverlapsWith returns true if the two blocks share any minute.
func (b Block) OverlapsWith(other Block) bool {
	return b.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < b.End.Minutes()
}

// Sort returns a copy of blocks stably sorted by start minute.
func Sort(blocks []Block) []Block {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, func(a, b Block) int {
		return cmp.Compare(a.Start.Minutes(), b.Start.Minutes())
	})
	return sorted
}

// Intervals converts blocks to labelled spans.
func Intervals(blocks []Block) []Interval {
	out := make([]Interval, len(blocks))
	for i, b := range blocks {
		out[i] = b.Interval()
	}
	return out
}
