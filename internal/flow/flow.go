// Package flow models choosing a password for a credential as a state
// machine, independent of any terminal I/O.
//
//	EnteringPassword   --EnterPassword(strong)-->  Confirming
//	EnteringPassword   --EnterPassword(weak)-->    OfferingWeakChoice
//	                                               (rejected in strong-only mode)
//	OfferingWeakChoice --UseWeak-->                Confirming
//	OfferingWeakChoice --Strengthen-->             EnteringPassword
//	OfferingWeakChoice --Generate-->               Generating
//	Generating         --Generate-->               Generating (new candidate)
//	Generating         --AcceptGenerated-->        Done
//	Generating         --EnterOwn-->               EnteringPassword (strong-only)
//	Confirming         --Confirm(match)-->         Done
//	Confirming         --Confirm(mismatch)-->      Confirming
//	any                --Cancel-->                 Aborted
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/policy"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrWeakPassword      = errors.New("password is not strong enough")
)

type State int

const (
	EnteringPassword State = iota
	OfferingWeakChoice
	Generating
	Confirming
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case EnteringPassword:
		return "entering-password"
	case OfferingWeakChoice:
		return "offering-weak-choice"
	case Generating:
		return "generating"
	case Confirming:
		return "confirming"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Generator produces candidate passwords. *policy.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, identity string) (policy.Generated, error)
}

// PasswordFlow tracks one password choice for identity.
type PasswordFlow struct {
	identity   string
	gen        Generator
	state      State
	strongOnly bool
	pending    string
	candidate  policy.Generated
	result     string
}

func New(identity string, gen Generator) *PasswordFlow {
	return &PasswordFlow{identity: identity, gen: gen, state: EnteringPassword}
}

func (f *PasswordFlow) State() State { return f.state }

// StrongOnly reports whether weak passwords are currently refused.
func (f *PasswordFlow) StrongOnly() bool { return f.strongOnly }

// Candidate returns the last generated candidate.
func (f *PasswordFlow) Candidate() policy.Generated { return f.candidate }

// EnterPassword evaluates password. The evaluation is returned in every case
// so the caller can show feedback.
func (f *PasswordFlow) EnterPassword(password string) (policy.Evaluation, error) {
	if err := f.expect(EnteringPassword); err != nil {
		return policy.Evaluation{}, err
	}
	if password == "" {
		return policy.Evaluation{}, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}

	ev := policy.Evaluate(password, f.identity)
	switch {
	case ev.Strong:
		f.pending = password
		f.state = Confirming
	case f.strongOnly:
		return ev, ErrWeakPassword
	default:
		f.pending = password
		f.state = OfferingWeakChoice
	}
	return ev, nil
}

// UseWeak keeps the weak password and moves to confirmation.
func (f *PasswordFlow) UseWeak() error {
	if err := f.expect(OfferingWeakChoice); err != nil {
		return err
	}
	f.state = Confirming
	return nil
}

// Strengthen discards the weak password and asks for another.
func (f *PasswordFlow) Strengthen() error {
	if err := f.expect(OfferingWeakChoice); err != nil {
		return err
	}
	f.pending = ""
	f.state = EnteringPassword
	return nil
}

// Generate produces a new candidate.
func (f *PasswordFlow) Generate(ctx context.Context) (policy.Generated, error) {
	if err := f.expect(OfferingWeakChoice, Generating); err != nil {
		return policy.Generated{}, err
	}
	g, err := f.gen.Generate(ctx, f.identity)
	if err != nil {
		return policy.Generated{}, err
	}
	f.pending = ""
	f.candidate = g
	f.state = Generating
	return g, nil
}

// AcceptGenerated takes the current candidate as the result. Generated
// passwords need no confirmation.
func (f *PasswordFlow) AcceptGenerated() (string, error) {
	if err := f.expect(Generating); err != nil {
		return "", err
	}
	f.result = f.candidate.Password
	f.state = Done
	return f.result, nil
}

// EnterOwn rejects the generated candidates and returns to manual entry,
// after which only strong passwords are accepted.
func (f *PasswordFlow) EnterOwn() error {
	if err := f.expect(Generating); err != nil {
		return err
	}
	f.candidate = policy.Generated{}
	f.strongOnly = true
	f.state = EnteringPassword
	return nil
}

// Confirm compares the re-typed password. A mismatch stays in Confirming.
func (f *PasswordFlow) Confirm(password string) error {
	if err := f.expect(Confirming); err != nil {
		return err
	}
	if password != f.pending {
		return common.ErrMismatch
	}
	f.result = f.pending
	f.pending = ""
	f.state = Done
	return nil
}

// Cancel aborts the flow. It is a no-op once the flow has finished.
func (f *PasswordFlow) Cancel() {
	if f.state == Done || f.state == Aborted {
		return
	}
	f.pending = ""
	f.candidate = policy.Generated{}
	f.state = Aborted
}

// Password returns the chosen password once the flow is Done.
func (f *PasswordFlow) Password() (string, error) {
	if err := f.expect(Done); err != nil {
		return "", err
	}
	return f.result, nil
}

func (f *PasswordFlow) expect(states ...State) error {
	for _, s := range states {
		if f.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: not allowed in state %s", ErrInvalidTransition, f.state)
}
