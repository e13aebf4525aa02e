package policy

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
)

const (
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars = "0123456789"

	// GeneratorSpecials is the special set drawn from when generating.
	GeneratorSpecials = "!@#$%^&*()-_=+[]{};:,.<>?"

	alphabet = lowerChars + upperChars + digitChars + GeneratorSpecials
)

const (
	MaxAttempts    = 500
	RelaxAfter     = 200
	FallbackLength = 16
	minExtraChars  = 8
	maxExtraChars  = 12
)

// Source yields uniform integers in [0, n).
type Source interface {
	Int(n int) (int, error)
}

type cryptoSource struct{}

func (cryptoSource) Int(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Generated describes a generated password and how it was obtained.
//
// Relaxed means the password was accepted after RelaxAfter attempts while
// still resembling the identity. Fallback means every attempt failed and
// Password is FallbackLength random characters with no guarantees at all.
type Generated struct {
	Password string
	Attempts int
	Relaxed  bool
	Fallback bool
}

type Generator struct {
	src Source
	log logging.Logger
}

type Option func(*Generator)

// WithSource replaces the default crypto/rand source.
func WithSource(src Source) Option {
	return func(g *Generator) { g.src = src }
}

func WithLogger(log logging.Logger) Option {
	return func(g *Generator) { g.log = log }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{src: cryptoSource{}, log: logging.Discard()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns a password that is strong for identity.
//
// Each candidate has one lowercase letter, one uppercase letter, one digit
// and one generator special, plus 8 to 12 characters from the full
// alphabet, shuffled. A candidate is accepted when Evaluate reports it
// strong. Past RelaxAfter attempts, a candidate passing the structural
// criteria is accepted even if it resembles identity. If MaxAttempts is
// reached the result is a plain random string, flagged as Fallback.
func (g *Generator) Generate(ctx context.Context, identity string) (Generated, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		candidate, err := g.candidate()
		if err != nil {
			return Generated{}, err
		}

		ev := Evaluate(candidate, identity)
		if ev.Strong {
			return Generated{Password: candidate, Attempts: attempt}, nil
		}
		if attempt > RelaxAfter && ev.StructurallyStrong() {
			g.log.Debug(ctx, "generated password accepted with similarity relaxed", "attempt", attempt)
			return Generated{Password: candidate, Attempts: attempt, Relaxed: true}, nil
		}
	}

	pw, err := g.pick(alphabet, FallbackLength)
	if err != nil {
		return Generated{}, err
	}
	g.log.Warn(ctx, "password generation exhausted all attempts; returning unchecked random password",
		"attempts", MaxAttempts)
	return Generated{Password: string(pw), Attempts: MaxAttempts, Fallback: true}, nil
}

func (g *Generator) candidate() (string, error) {
	extra, err := g.src.Int(maxExtraChars - minExtraChars + 1)
	if err != nil {
		return "", fmt.Errorf("random source: %w", err)
	}

	buf := make([]byte, 0, 4+maxExtraChars)
	for _, set := range []string{lowerChars, upperChars, digitChars, GeneratorSpecials} {
		ch, err := g.pick(set, 1)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch...)
	}

	rest, err := g.pick(alphabet, minExtraChars+extra)
	if err != nil {
		return "", err
	}
	buf = append(buf, rest...)

	if err := g.shuffle(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (g *Generator) pick(set string, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := g.src.Int(len(set))
		if err != nil {
			return nil, fmt.Errorf("random source: %w", err)
		}
		out[i] = set[idx]
	}
	return out, nil
}

// shuffle is a Fisher-Yates shuffle driven by the generator's source.
func (g *Generator) shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := g.src.Int(i + 1)
		if err != nil {
			return fmt.Errorf("random source: %w", err)
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
