// Package auth implements the master authentication gate: login attempt
// counting, lockout, one-time-code recovery and the session token that
// authorizes credential access.
//
// Transitions:
//
//	AwaitingLogin --CheckLogin ok-->        Authenticated
//	AwaitingLogin --CheckLogin fail-->      AwaitingLogin (failures+1)
//	AwaitingLogin --failures==threshold-->  LockedPendingRecovery
//	Locked        --DeclineReset-->         AwaitingLogin (failures=decline counter)
//	Locked        --VerifyReset ok-->       Authenticated
//	Locked        --VerifyReset fail-->     Locked
//	Authenticated --Logout/expiry-->        AwaitingLogin
//	any           --Exit-->                 Terminated
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MasterStore reads and replaces the master password.
type MasterStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, password string) error
}

// Notifier delivers a fresh one-time code to destination and returns it.
type Notifier interface {
	SendCode(ctx context.Context, destination string) (string, error)
}

type Config struct {
	// LockoutThreshold is the number of consecutive failures that locks the gate.
	LockoutThreshold int
	// DeclineCounter is the failure count restored when a reset is declined.
	DeclineCounter int
	OTPTTL         time.Duration
	SessionTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		LockoutThreshold: 2,
		DeclineCounter:   1,
		OTPTTL:           10 * time.Minute,
		SessionTTL:       30 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.LockoutThreshold < 1 {
		return fmt.Errorf("%w: lockout threshold must be at least 1", common.ErrValidation)
	}
	if c.DeclineCounter < 0 || c.DeclineCounter >= c.LockoutThreshold {
		return fmt.Errorf("%w: decline counter must be in [0, %d)", common.ErrValidation, c.LockoutThreshold)
	}
	if c.OTPTTL <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("%w: ttl values must be positive", common.ErrValidation)
	}
	return nil
}

type challenge struct {
	id          string
	code        string
	destination string
	expiresAt   time.Time
}

// Gate guards the vault behind the master password. It is safe for
// concurrent use.
type Gate struct {
	mu        sync.Mutex
	store     MasterStore
	notifier  Notifier
	cfg       Config
	log       logging.Logger
	now       func() time.Time
	secret    []byte
	state     State
	failures  int
	challenge *challenge
	sessionID string
}

type Option func(*Gate)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(store MasterStore, notifier Notifier, cfg Config, log logging.Logger, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Gate{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		secret:   common.GenerateRandByteArray(32),
		state:    AwaitingLogin,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Failures returns the current consecutive failed-login count.
func (g *Gate) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}

// CheckLogin compares password with the stored master password. On success
// it returns a session token for WithToken. A mismatch that reaches the
// lockout threshold returns an error matching both ErrMismatch and ErrLocked.
func (g *Gate) CheckLogin(ctx context.Context, password string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Terminated:
		return "", common.ErrTerminated
	case LockedPendingRecovery:
		return "", common.ErrLocked
	case Authenticated:
		return "", fmt.Errorf("%w: already authenticated", common.ErrInvalidState)
	}

	master, err := g.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read master password: %w", err)
	}

	if !equal(master, password) {
		g.failures++
		g.log.Warn(ctx, "master password mismatch", "failures", g.failures)
		if g.failures >= g.cfg.LockoutThreshold {
			g.state = LockedPendingRecovery
			g.log.Warn(ctx, "gate locked pending recovery")
			return "", errors.Join(common.ErrMismatch, common.ErrLocked)
		}
		return "", common.ErrMismatch
	}

	return g.authenticate(ctx)
}

// DeclineReset leaves the locked state without recovering. The failure count
// becomes DeclineCounter, so with the defaults one more wrong attempt locks
// the gate again.
func (g *Gate) DeclineReset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked(); err != nil {
		return err
	}
	g.state = AwaitingLogin
	g.failures = g.cfg.DeclineCounter
	g.challenge = nil
	return nil
}

// RequestReset sends a one-time code to destination and returns the id of
// the new challenge. Any earlier challenge is discarded.
func (g *Gate) RequestReset(ctx context.Context, destination string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked(); err != nil {
		return "", err
	}

	code, err := g.notifier.SendCode(ctx, destination)
	if err != nil {
		return "", err
	}

	g.challenge = &challenge{
		id:          uuid.NewString(),
		code:        code,
		destination: destination,
		expiresAt:   g.now().Add(g.cfg.OTPTTL),
	}
	g.log.Info(ctx, "reset challenge issued", "challenge_id", g.challenge.id)
	return g.challenge.id, nil
}

// VerifyReset checks code against the challenge and, if it matches, stores
// newPassword as the master password and authenticates. The challenge is
// consumed by this call whatever the outcome; a wrong code leaves the gate
// locked and requires a new RequestReset.
func (g *Gate) VerifyReset(ctx context.Context, challengeID, code, newPassword string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireLocked(); err != nil {
		return "", err
	}
	if newPassword == "" {
		return "", fmt.Errorf("%w: new master password must not be empty", common.ErrValidation)
	}

	ch := g.challenge
	if ch == nil || ch.id != challengeID {
		return "", fmt.Errorf("reset challenge: %w", common.ErrNotFound)
	}
	g.challenge = nil

	if g.now().After(ch.expiresAt) {
		g.log.Warn(ctx, "reset challenge expired", "challenge_id", ch.id)
		return "", common.ErrChallengeExpired
	}
	if !equal(ch.code, code) {
		g.log.Warn(ctx, "reset code mismatch", "challenge_id", ch.id)
		return "", common.ErrMismatch
	}

	if err := g.store.Set(ctx, newPassword); err != nil {
		return "", fmt.Errorf("store new master password: %w", err)
	}
	g.log.Info(ctx, "master password reset", "challenge_id", ch.id)
	return g.authenticate(ctx)
}

// ChangeMaster replaces the master password of an authenticated session.
func (g *Gate) ChangeMaster(ctx context.Context, current, next string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Authenticated {
		return common.ErrUnauthorized
	}
	if next == "" {
		return fmt.Errorf("%w: new master password must not be empty", common.ErrValidation)
	}

	master, err := g.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read master password: %w", err)
	}
	if !equal(master, current) {
		return common.ErrMismatch
	}
	return g.store.Set(ctx, next)
}

// Logout ends the session and returns to AwaitingLogin.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Authenticated {
		return fmt.Errorf("%w: not authenticated", common.ErrInvalidState)
	}
	g.state = AwaitingLogin
	g.sessionID = ""
	return nil
}

// Exit terminates the gate from any state. It is final.
func (g *Gate) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = Terminated
	g.sessionID = ""
	g.challenge = nil
}

// Authorize succeeds only while authenticated and ctx carries the token of
// the current session. An expired session returns the gate to AwaitingLogin.
func (g *Gate) Authorize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Authenticated:
	case Terminated:
		return fmt.Errorf("%w: %w", common.ErrUnauthorized, common.ErrTerminated)
	default:
		return common.ErrUnauthorized
	}

	token, ok := TokenFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no session token", common.ErrUnauthorized)
	}

	claims, err := parseToken(token, g.secret, g.now)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			g.state = AwaitingLogin
			g.sessionID = ""
			g.log.Info(ctx, "session expired")
		}
		return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}
	if claims.ID != g.sessionID {
		return fmt.Errorf("%w: stale session", common.ErrUnauthorized)
	}
	return nil
}

func (g *Gate) authenticate(ctx context.Context) (string, error) {
	token, sid, err := generateToken(g.secret, g.now(), g.cfg.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	g.state = Authenticated
	g.failures = 0
	g.challenge = nil
	g.sessionID = sid
	g.log.Info(ctx, "authenticated")
	return token, nil
}

func (g *Gate) requireLocked() error {
	switch g.state {
	case LockedPendingRecovery:
		return nil
	case Terminated:
		return common.ErrTerminated
	}
	return fmt.Errorf("%w: gate is not locked", common.ErrInvalidState)
}

// equal compares two secrets in constant time. Hashing first hides length
// differences.
func equal(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
