package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "johnsmith", Normalize("John.Smith_42"))
	assert.Equal(t, "", Normalize("1234!@#"))
	assert.Equal(t, "abc", Normalize("ÄaBc"))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, Ratio("same", "same"), 1e-9)
	assert.InDelta(t, 0.8, Ratio("alexander", "alxndr"), 1e-9)
}

func TestTooSimilar_SubstringBothWays(t *testing.T) {
	tests := []struct {
		name     string
		password string
		identity string
	}{
		{"identity inside password", "xxAlice2024!", "alice"},
		{"password inside identity", "J.o.h.n!#2024", "johnathan.smith"},
		{"case and punctuation ignored", "A.L.I.C.E-99", "Alice"},
		{"no letters in password", "12345678!", "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, TooSimilar(tt.password, tt.identity))
			assert.False(t, Evaluate(tt.password, tt.identity).Strong)
		})
	}
}

func TestTooSimilar_Ratio(t *testing.T) {
	assert.True(t, TooSimilar("Alxndr99!?", "alexander"))
	assert.False(t, TooSimilar("Tr0ub4dor!23", "alice"))
}

func TestTooSimilar_SkippedForLetterlessIdentity(t *testing.T) {
	assert.False(t, TooSimilar("12345aB!", "12345"))
	assert.False(t, TooSimilar("anything", ""))
	assert.True(t, Evaluate("12345aB!", "12345").Strong)
}
