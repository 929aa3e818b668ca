// Package appearance parses, caches and publishes snapshots of macOS
// appearances and their system colors.
package appearance

import (
	"sort"

	"go.uber.org/atomic"
)

// Snapshot is an immutable capture of one appearance and its system colors.
//
// Many snapshots may share a name; at any time the registry holds the one
// that reflects the current system state. Older snapshots remain readable
// and point forward to their successor through Replacement.
type Snapshot struct {
	name           string
	isDark         bool
	isHighContrast bool
	rawText        string
	colors         map[string]Color

	replacement atomic.Pointer[Snapshot]
}

// Name returns the system appearance name.
func (s *Snapshot) Name() string {
	return s.name
}

// IsDark reports whether the appearance is a dark appearance.
func (s *Snapshot) IsDark() bool {
	return s.isDark
}

// IsHighContrast reports whether the increase contrast option was enabled.
func (s *Snapshot) IsHighContrast() bool {
	return s.isHighContrast
}

// RawText returns the exact text the snapshot was parsed from.
func (s *Snapshot) RawText() string {
	return s.rawText
}

// Colors returns a copy of the color table.
func (s *Snapshot) Colors() map[string]Color {
	out := make(map[string]Color, len(s.colors))
	for k, v := range s.colors {
		out[k] = v
	}
	return out
}

// Color looks up a single system color.
func (s *Snapshot) Color(name string) (Color, bool) {
	c, ok := s.colors[name]
	return c, ok
}

// ColorNames returns the color names in sorted order.
func (s *Snapshot) ColorNames() []string {
	names := make([]string, 0, len(s.colors))
	for k := range s.colors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of colors.
func (s *Snapshot) Len() int {
	return len(s.colors)
}

// IsValid reports whether the snapshot has not been replaced.
func (s *Snapshot) IsValid() bool {
	return s.replacement.Load() == nil
}

// Replacement returns the snapshot that superseded this one, or nil.
func (s *Snapshot) Replacement() *Snapshot {
	return s.replacement.Load()
}

// Latest follows the replacement chain to its newest snapshot.
func (s *Snapshot) Latest() *Snapshot {
	cur := s
	for {
		next := cur.replacement.Load()
		if next == nil {
			return cur
		}
		cur = next
	}
}

// setReplacement publishes next as the successor. Only the first call wins.
func (s *Snapshot) setReplacement(next *Snapshot) bool {
	return s.replacement.CompareAndSwap(nil, next)
}
