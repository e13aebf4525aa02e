package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strings"
	"testing"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seededSource struct{ r *mrand.Rand }

func (s seededSource) Int(n int) (int, error) { return s.r.IntN(n), nil }

func newSeeded(seed uint64) seededSource {
	return seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// fixedSource always returns min(k, n-1).
type fixedSource int

func (k fixedSource) Int(n int) (int, error) { return min(int(k), n-1), nil }

type failingSource struct{}

func (failingSource) Int(int) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerate_Composition(t *testing.T) {
	g := NewGenerator(WithSource(newSeeded(1)))
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		res, err := g.Generate(ctx, "")
		require.NoError(t, err)
		require.False(t, res.Fallback)

		pw := res.Password
		assert.GreaterOrEqual(t, len(pw), 4+minExtraChars)
		assert.LessOrEqual(t, len(pw), 4+maxExtraChars)
		assert.True(t, strings.ContainsAny(pw, lowerChars), pw)
		assert.True(t, strings.ContainsAny(pw, upperChars), pw)
		assert.True(t, strings.ContainsAny(pw, digitChars), pw)
		assert.True(t, strings.ContainsAny(pw, GeneratorSpecials), pw)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestGenerate_ComplianceAcrossIdentities(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()
	names := []string{"alice", "bob", "carol.danvers", "x", "admin", "john_smith", "root", "m", "info@example.com", "4242"}

	strong := 0
	const total = 1000
	for i := 0; i < total; i++ {
		identity := fmt.Sprintf("%s%d", names[i%len(names)], i)
		res, err := g.Generate(ctx, identity)
		require.NoError(t, err)
		if Evaluate(res.Password, identity).Strong {
			strong++
		}
	}
	assert.GreaterOrEqual(t, strong, total*99/100)
}

func TestGenerate_NotPositionallyPredictable(t *testing.T) {
	g := NewGenerator(WithSource(newSeeded(7)))
	firstIsLower := 0
	for i := 0; i < 300; i++ {
		res, err := g.Generate(context.Background(), "")
		require.NoError(t, err)
		if strings.ContainsRune(lowerChars, rune(res.Password[0])) {
			firstIsLower++
		}
	}
	assert.Less(t, firstIsLower, 300, "shuffle must move the fixed lowercase character")
}

func TestGenerate_RelaxesAfterThreshold(t *testing.T) {
	// Zero source always builds "aA0!" plus 'a' padding, which contains the
	// identity "a" but passes every structural criterion.
	g := NewGenerator(WithSource(fixedSource(0)))

	res, err := g.Generate(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.False(t, res.Fallback)
	assert.Equal(t, RelaxAfter+1, res.Attempts)
	assert.True(t, Evaluate(res.Password, "a").StructurallyStrong())
}

func TestGenerate_FallbackIsFlaggedAndLogged(t *testing.T) {
	// Index 10 selects '-' as the special, which never satisfies the
	// strength special set, so no candidate can pass.
	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug")
	require.NoError(t, err)
	g := NewGenerator(WithSource(fixedSource(10)), WithLogger(log))

	res, err := g.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, MaxAttempts, res.Attempts)
	assert.Len(t, res.Password, FallbackLength)
	assert.Contains(t, buf.String(), "exhausted all attempts")
}

func TestGenerate_SourceError(t *testing.T) {
	g := NewGenerator(WithSource(failingSource{}))
	_, err := g.Generate(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
