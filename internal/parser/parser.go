// Package parser loads pattern lists from plain text, YAML and Markdown files.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sankz2/pattern-search-tool/internal/matcher"
)

// Format represents the format of a pattern file
type Format int

const (
	// FormatText represents one pattern per line; the default for unknown extensions
	FormatText Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) file whose list items are patterns
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) pattern file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// PatternFile is the content of one pattern file.
type PatternFile struct {
	// Patterns in file order, duplicates included
	Patterns []string
	// Presets asks for the preset patterns to be added as well
	Presets bool
	// FilePath is the absolute path the file was loaded from
	FilePath string
}

// Parser is the interface that all pattern file parsers must implement
type Parser interface {
	// Parse reads from an io.Reader and returns the parsed patterns
	Parse(r io.Reader) (*PatternFile, error)
}

// DetectFormat detects the pattern file format based on file extension
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatText
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// NewParser creates a new parser instance for the specified format
func NewParser(format Format) Parser {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser()
	case FormatYAML:
		return &YAMLParser{}
	default:
		return &TextParser{}
	}
}

// ParseFile detects the format of path, parses it and records the absolute path.
func ParseFile(path string) (*PatternFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer file.Close()

	pf, err := NewParser(DetectFormat(path)).Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	pf.FilePath = absPath
	return pf, nil
}

// Apply adds the file's patterns (and presets, if requested) to ps and
// returns how many were new.
func (pf *PatternFile) Apply(ps *matcher.PatternSet) int {
	added := 0
	if pf.Presets {
		added += ps.AddPresets()
	}
	return added + ps.AddAll(pf.Patterns...)
}

// LoadPatternSet builds a PatternSet from several pattern files in order.
func LoadPatternSet(paths ...string) (*matcher.PatternSet, error) {
	ps := matcher.NewPatternSet()
	for _, path := range paths {
		pf, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		pf.Apply(ps)
	}
	return ps, nil
}

// TextParser reads one pattern per line. Blank lines and lines starting with
// "#" are skipped; a leading "\#" keeps a literal "#".
type TextParser struct{}

// Parse implements Parser.
func (p *TextParser) Parse(r io.Reader) (*PatternFile, error) {
	pf := &PatternFile{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, `\#`):
			line = line[1:]
		}
		pf.Patterns = append(pf.Patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patterns: %w", err)
	}
	return pf, nil
}

// YAMLParser accepts either a bare list of strings or a mapping:
//
//	presets: true
//	patterns:
//	  - timeout
//	  - OutOfMemory
type YAMLParser struct{}

// Parse implements Parser.
func (p *YAMLParser) Parse(r io.Reader) (*PatternFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return &PatternFile{}, nil
	}

	pf := &PatternFile{}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&pf.Patterns); err != nil {
			return nil, fmt.Errorf("patterns must be strings: %w", err)
		}
	case yaml.MappingNode:
		var doc struct {
			Presets  bool     `yaml:"presets"`
			Patterns []string `yaml:"patterns"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid pattern document: %w", err)
		}
		pf.Presets = doc.Presets
		pf.Patterns = doc.Patterns
	default:
		return nil, fmt.Errorf("expected a list of patterns or a mapping with a patterns key")
	}
	return pf, nil
}
