package display

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow on a terminal
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, paint(ColorEnabled(out), ansiYellow, b.String()))
}

// WarnCollisions creates one warning per output file written by several
// inputs, ordered by output path. The last listed input is the one kept.
func WarnCollisions(collisions map[string][]string) []Warning {
	outputs := make([]string, 0, len(collisions))
	for out := range collisions {
		outputs = append(outputs, out)
	}
	sort.Strings(outputs)

	warnings := make([]Warning, 0, len(outputs))
	for _, out := range outputs {
		inputs := collisions[out]
		warnings = append(warnings, Warning{
			Title:      fmt.Sprintf("Output name collision: %s", filepath.Base(out)),
			Message:    fmt.Sprintf("%d logs map to %s; only the last one is kept", len(inputs), out),
			Files:      inputs,
			Suggestion: "Rename the inputs or scan their directories separately",
		})
	}
	return warnings
}
