package matcher

import (
	"errors"
	"testing"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

func TestPatternSet_Add(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "keeps insertion order",
			input: []string{"failed", "Error", "timeout"},
			want:  []string{"failed", "Error", "timeout"},
		},
		{
			name:  "exact duplicates dropped",
			input: []string{"Error", "error", "Error"},
			want:  []string{"Error", "error"},
		},
		{
			name:  "whitespace trimmed before comparison",
			input: []string{" warn ", "warn"},
			want:  []string{"warn"},
		},
		{
			name:  "blank entries ignored",
			input: []string{"", "   ", "x"},
			want:  []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := NewPatternSet(tt.input...)
			got := ps.Patterns()
			if len(got) != len(tt.want) {
				t.Fatalf("Patterns() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Patterns()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPatternSet_AddReportsNew(t *testing.T) {
	ps := NewPatternSet()
	if !ps.Add("Error") {
		t.Error("first Add returned false")
	}
	if ps.Add("Error") {
		t.Error("duplicate Add returned true")
	}
	if !ps.Add("error") {
		t.Error("case variant Add returned false")
	}
}

func TestPatternSet_Presets(t *testing.T) {
	ps := NewPatternSet("Error")
	added := ps.AddPresets()
	if added != len(Presets)-1 {
		t.Errorf("AddPresets() = %d, want %d", added, len(Presets)-1)
	}
	if ps.Len() != len(Presets) {
		t.Errorf("Len() = %d, want %d", ps.Len(), len(Presets))
	}
	if ps.AddPresets() != 0 {
		t.Error("second AddPresets added entries")
	}
}

func TestPatternSet_Remove(t *testing.T) {
	ps := NewPatternSet("a", "b", "c")

	if !ps.Remove("b") {
		t.Fatal("Remove(b) = false")
	}
	if ps.Contains("b") {
		t.Error("b still present")
	}
	if ps.Remove("B") {
		t.Error("Remove is case-sensitive; Remove(B) should be false")
	}
	got := ps.Patterns()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Patterns() = %q, want [a c]", got)
	}
	if !ps.Add("b") {
		t.Error("re-adding removed pattern failed")
	}
}

func TestPatternSet_PatternsReturnsCopy(t *testing.T) {
	ps := NewPatternSet("a")
	p := ps.Patterns()
	p[0] = "mutated"
	if ps.Patterns()[0] != "a" {
		t.Error("Patterns() exposed internal slice")
	}
}

func TestPatternSet_CompileEmpty(t *testing.T) {
	var ps PatternSet
	_, err := ps.Compile()
	if !errors.Is(err, models.NoPatterns) {
		t.Errorf("Compile() error = %v, want NoPatterns", err)
	}
	if ps.Add("x") != true {
		t.Error("zero-value PatternSet should accept patterns")
	}
}
