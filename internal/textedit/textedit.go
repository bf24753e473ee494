// Package textedit applies collected text changes to a buffer in one commit.
//
// Passes that rewrite source (quick fixes, code repair) never mutate the buffer
// while a tree is being read. They collect Change values and hand the whole set
// to Apply once the traversal is finished.
package textedit

import (
	"sort"
	"strings"
)

// Change replaces the byte range [From, To) of a buffer with Insert.
// From == To is a pure insertion.
type Change struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Insert string `json:"insert"`
}

// Delete returns a change removing [from, to).
func Delete(from, to int) Change {
	return Change{From: from, To: to}
}

// Insert returns a change inserting text at pos.
func Insert(pos int, text string) Change {
	return Change{From: pos, To: pos, Insert: text}
}

// Replace returns a change replacing [from, to) with text.
func Replace(from, to int, text string) Change {
	return Change{From: from, To: to, Insert: text}
}

// Apply commits changes against src. Changes are ordered by position; changes
// sharing a start offset keep their collection order. Ranges are clamped to the
// buffer, and a change overlapping an earlier one is dropped rather than
// corrupting offsets.
func Apply(src string, changes []Change) string {
	if len(changes) == 0 {
		return src
	}
	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		// Pure insertions go before a deletion starting at the same offset.
		return sorted[i].To == sorted[i].From && sorted[j].To != sorted[j].From
	})

	var sb strings.Builder
	sb.Grow(len(src))
	pos := 0
	for _, c := range sorted {
		from, to := clamp(c.From, len(src)), clamp(c.To, len(src))
		if to < from {
			from, to = to, from
		}
		if from < pos {
			// Overlaps an already applied change.
			continue
		}
		sb.WriteString(src[pos:from])
		sb.WriteString(c.Insert)
		pos = to
	}
	sb.WriteString(src[pos:])
	return sb.String()
}

// Shift maps an offset in the original buffer to its offset after changes.
func Shift(offset int, changes []Change) int {
	delta := 0
	for _, c := range changes {
		if c.To <= offset {
			delta += len(c.Insert) - (c.To - c.From)
		}
	}
	return offset + delta
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
