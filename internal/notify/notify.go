// Package notify delivers one-time reset codes out of band.
//
// CodeSender generates a fresh numeric code per request and hands it to a
// Transport. The code is returned to the caller for comparison and is never
// logged or persisted.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
)

var ErrDelivery = errors.New("code delivery failed")

// Transport delivers a code to a destination such as an email address.
type Transport interface {
	Deliver(ctx context.Context, destination, code string) error
}

type CodeSender struct {
	transport Transport
	log       logging.Logger
	digits    int
	genCode   func(n int) (string, error)
}

func NewCodeSender(t Transport, log logging.Logger) *CodeSender {
	return &CodeSender{
		transport: t,
		log:       log,
		digits:    common.OTPDigits,
		genCode:   common.RandomDigits,
	}
}

// SendCode generates a code, delivers it to destination and returns it.
func (s *CodeSender) SendCode(ctx context.Context, destination string) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", fmt.Errorf("%w: destination is required", common.ErrValidation)
	}

	code, err := s.genCode(s.digits)
	if err != nil {
		return "", err
	}

	if err := s.transport.Deliver(ctx, destination, code); err != nil {
		s.log.Error(ctx, "reset code delivery failed", "destination", destination, "error", err)
		return "", fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.log.Info(ctx, "reset code sent", "destination", destination)
	return code, nil
}
