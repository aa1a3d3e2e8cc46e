package matcher

import (
	"errors"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

// ErrFinalized is returned when a Builder is used after Build.
var ErrFinalized = errors.New("matcher builder already finalized")

// Builder collects patterns for a Matcher. It is the Building state of the
// matcher lifecycle; Build moves it to Finalized and no further patterns are
// accepted.
type Builder struct {
	patterns  []string            // original text, exact-deduplicated
	seen      map[string]struct{} // original text
	keywords  []string            // lower-cased, deduplicated
	keywordIx map[string]struct{} // lower-cased
	finalized bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		seen:      make(map[string]struct{}),
		keywordIx: make(map[string]struct{}),
	}
}

// Add inserts a literal pattern. Blank patterns and exact duplicates are ignored.
func (b *Builder) Add(pattern string) error {
	if b.finalized {
		return ErrFinalized
	}
	if strings.TrimSpace(pattern) == "" {
		return nil
	}
	if _, dup := b.seen[pattern]; dup {
		return nil
	}
	b.seen[pattern] = struct{}{}
	b.patterns = append(b.patterns, pattern)

	keyword := strings.ToLower(pattern)
	if _, dup := b.keywordIx[keyword]; !dup {
		b.keywordIx[keyword] = struct{}{}
		b.keywords = append(b.keywords, keyword)
	}
	return nil
}

// Build compiles the collected patterns into an immutable Matcher.
// Construction is linear in the total pattern length.
func (b *Builder) Build() (*Matcher, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	if len(b.keywords) == 0 {
		return nil, models.NewError(models.NoPatterns, "build matcher", "", nil)
	}
	b.finalized = true

	trie := ahocorasick.NewTrieBuilder().AddStrings(b.keywords).Build()

	return &Matcher{
		trie:     trie,
		patterns: b.patterns,
		keywords: b.keywords,
	}, nil
}

// Matcher answers "does this line contain any pattern" case-insensitively in
// a single pass over the line, independent of the number of patterns.
// It is safe for concurrent use.
type Matcher struct {
	trie     *ahocorasick.Trie
	patterns []string
	keywords []string
}

// Match reports whether line contains at least one pattern, ignoring case.
func (m *Matcher) Match(line string) bool {
	return m.trie.MatchFirstString(strings.ToLower(line)) != nil
}

// Find returns the lower-cased keyword of the first match in line.
// The first match is the one that ends earliest.
func (m *Matcher) Find(line string) (string, bool) {
	match := m.trie.MatchFirstString(strings.ToLower(line))
	if match == nil {
		return "", false
	}
	// MatchFirst leaves the pattern index unset; the matched text is the keyword.
	return match.MatchString(), true
}

// Patterns returns the stored patterns in insertion order, original case.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// KeywordCount returns the number of distinct lower-cased keywords in the automaton.
func (m *Matcher) KeywordCount() int {
	return len(m.keywords)
}
