// Package matcher holds the pattern set and the case-insensitive
// multi-pattern automaton used to filter log lines.
package matcher

import "strings"

// Presets are the patterns offered as a one-click starting point.
var Presets = []string{"Exception", "exception", "Error", "error", "Failed", "failed"}

// PatternSet is an ordered collection of literal patterns deduplicated by
// exact text. Case variants are kept as distinct entries; they match the same
// lines once compiled.
type PatternSet struct {
	patterns []string
	index    map[string]struct{}
}

// NewPatternSet creates a PatternSet holding the given patterns in order.
func NewPatternSet(patterns ...string) *PatternSet {
	ps := &PatternSet{index: make(map[string]struct{})}
	ps.AddAll(patterns...)
	return ps
}

// Add appends pattern unless an identical entry exists.
// Surrounding whitespace is trimmed; blank patterns are ignored.
// Returns true if the pattern was added.
func (ps *PatternSet) Add(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if ps.index == nil {
		ps.index = make(map[string]struct{})
	}
	if _, exists := ps.index[pattern]; exists {
		return false
	}
	ps.index[pattern] = struct{}{}
	ps.patterns = append(ps.patterns, pattern)
	return true
}

// AddAll adds every pattern in order and returns how many were new.
func (ps *PatternSet) AddAll(patterns ...string) int {
	added := 0
	for _, p := range patterns {
		if ps.Add(p) {
			added++
		}
	}
	return added
}

// AddPresets adds the preset patterns.
func (ps *PatternSet) AddPresets() int {
	return ps.AddAll(Presets...)
}

// Remove deletes the entry with exactly this text. Returns true if found.
func (ps *PatternSet) Remove(pattern string) bool {
	if _, exists := ps.index[pattern]; !exists {
		return false
	}
	delete(ps.index, pattern)
	for i, p := range ps.patterns {
		if p == pattern {
			ps.patterns = append(ps.patterns[:i], ps.patterns[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether an entry with exactly this text exists.
func (ps *PatternSet) Contains(pattern string) bool {
	_, exists := ps.index[pattern]
	return exists
}

// Len returns the number of stored entries.
func (ps *PatternSet) Len() int {
	return len(ps.patterns)
}

// Patterns returns a copy of the entries in insertion order.
func (ps *PatternSet) Patterns() []string {
	out := make([]string, len(ps.patterns))
	copy(out, ps.patterns)
	return out
}

// Compile builds a Matcher from the current entries.
func (ps *PatternSet) Compile() (*Matcher, error) {
	b := NewBuilder()
	for _, p := range ps.patterns {
		if err := b.Add(p); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
