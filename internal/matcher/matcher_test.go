package matcher

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

func mustBuild(t *testing.T, patterns ...string) *Matcher {
	t.Helper()
	m, err := NewPatternSet(patterns...).Compile()
	require.NoError(t, err)
	return m
}

func TestMatcher_Match(t *testing.T) {
	m := mustBuild(t, "error", "failed")

	tests := []struct {
		line string
		want bool
	}{
		{"OK", false},
		{"Error: disk full", true},
		{"ok", false},
		{"Failed init", true},
		{"FAILED", true},
		{"the operation failedmiserably", true},
		{"err or", false},
		{"", false},
		{"no problem here\n", false},
		{"  eRRoR  \r\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.line))
		})
	}
}

func TestMatcher_SharedPrefixes(t *testing.T) {
	m := mustBuild(t, "he", "she", "his", "hers")

	assert.True(t, m.Match("USHERS"))
	assert.True(t, m.Match("this"))
	assert.True(t, m.Match("ahe"))
	assert.False(t, m.Match("hi s"))
}

func TestMatcher_UppercasePatternsMatchLowercaseText(t *testing.T) {
	m := mustBuild(t, "TimeOut")
	assert.True(t, m.Match("connection timeout after 30s"))
	assert.True(t, m.Match("TIMEOUT"))
}

func TestMatcher_Find(t *testing.T) {
	m := mustBuild(t, "Warn", "Fatal", "disk")

	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"[FATAL] crashed", "fatal", true},
		{"[warn] low memory", "warn", true},
		{"Disk full, FATAL", "disk", true},
		{"fatal after warn", "fatal", true},
		{"[INFO] started", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kw, ok := m.Find(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, kw)
		})
	}
}

func TestMatcher_AgreesWithBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abAB c")

	randString := func(maxLen int) string {
		n := rng.Intn(maxLen) + 1
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		return sb.String()
	}

	for round := 0; round < 200; round++ {
		var patterns []string
		for i := 0; i < rng.Intn(6)+1; i++ {
			p := strings.TrimSpace(randString(4))
			if p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			continue
		}
		m := mustBuild(t, patterns...)

		for i := 0; i < 20; i++ {
			line := randString(12)
			want := false
			for _, p := range patterns {
				if strings.Contains(strings.ToLower(line), strings.ToLower(p)) {
					want = true
					break
				}
			}
			require.Equalf(t, want, m.Match(line), "patterns=%q line=%q", patterns, line)
		}
	}
}

func TestMatcher_OrderIndependent(t *testing.T) {
	patterns := []string{"timeout", "Refused", "panic:", "oom", "segfault"}
	lines := []string{
		"dial tcp: connection refused",
		"all good",
		"goroutine 1 [running]: panic: boom",
		"OOM killer invoked",
		"time out",
	}

	base := mustBuild(t, patterns...)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), patterns...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		m := mustBuild(t, shuffled...)
		for _, line := range lines {
			assert.Equalf(t, base.Match(line), m.Match(line), "order %v line %q", shuffled, line)
		}
	}
}

func TestBuilder_DeduplicatesExactText(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add("Error"))
	require.NoError(t, b.Add("error"))
	require.NoError(t, b.Add("Error"))

	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"Error", "error"}, m.Patterns())
	assert.Equal(t, 1, m.KeywordCount())
	assert.True(t, m.Match("ERROR"))
}

func TestBuilder_Lifecycle(t *testing.T) {
	t.Run("empty builder reports no patterns", func(t *testing.T) {
		_, err := NewBuilder().Build()
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.NoPatterns))
	})

	t.Run("blank patterns do not count", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.Add("   "))
		_, err := b.Build()
		assert.True(t, errors.Is(err, models.NoPatterns))
	})

	t.Run("add after build is rejected", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.Add("x"))
		_, err := b.Build()
		require.NoError(t, err)

		assert.ErrorIs(t, b.Add("y"), ErrFinalized)
		_, err = b.Build()
		assert.ErrorIs(t, err, ErrFinalized)
	})
}

func TestMatcher_ConcurrentUse(t *testing.T) {
	m := mustBuild(t, "error")
	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 1000; j++ {
				if !m.Match("an ERROR occurred") {
					done <- false
					return
				}
			}
			done <- true
		}()
	}
	for i := 0; i < 8; i++ {
		assert.True(t, <-done)
	}
}
