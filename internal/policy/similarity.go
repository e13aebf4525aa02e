package policy

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityThreshold is the ratio at or above which two normalized strings
// are considered too similar.
const SimilarityThreshold = 0.6

// Normalize lower-cases s and keeps only the letters a-z.
func Normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0, 1],
// computed character by character.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// TooSimilar reports whether password resembles identity too closely.
// It is always false when identity has no letters.
func TooSimilar(password, identity string) bool {
	id := Normalize(identity)
	if id == "" {
		return false
	}
	pw := Normalize(password)
	if strings.Contains(pw, id) || strings.Contains(id, pw) {
		return true
	}
	return Ratio(id, pw) >= SimilarityThreshold
}
