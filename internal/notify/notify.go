// internal/notify/notify.go

// Package notify delivers verification codes by email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/rs/zerolog"
)

const verificationSubject = "Your Verification Code"

var ErrDeliveryFailed = errors.New("failed to send verification email")

// Mailer sends a verification code to an address.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

func verificationBody(code string) string {
	return fmt.Sprintf("Use this code to verify your email: %s", code)
}

// sender is the part of the shoutrrr router the mailer uses.
type sender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrMailer sends through a shoutrrr smtp:// URL. The recipient is passed
// per message, overriding the toaddresses of the URL.
type ShoutrrrMailer struct {
	sender sender
	log    zerolog.Logger
}

func NewShoutrrrMailer(url string, timeout time.Duration, logger zerolog.Logger) (*ShoutrrrMailer, error) {
	if url == "" {
		return nil, fmt.Errorf("smtp url is required")
	}
	r, err := shoutrrr.CreateSender(url)
	if err != nil {
		return nil, fmt.Errorf("create shoutrrr sender: %w", err)
	}
	configureRouter(r, timeout)
	return &ShoutrrrMailer{sender: r, log: logger.With().Str("component", "mailer").Logger()}, nil
}

func configureRouter(r *router.ServiceRouter, timeout time.Duration) {
	if timeout > 0 {
		r.Timeout = timeout
	}
	r.SetLogger(log.New(io.Discard, "", 0))
}

func (m *ShoutrrrMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	params := stypes.Params{"toaddresses": email}
	params.SetTitle(verificationSubject)

	for _, err := range m.sender.Send(verificationBody(code), &params) {
		if err != nil {
			m.log.Error().Err(err).Str("email", email).Msg("verification email not delivered")
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	}
	m.log.Info().Str("email", email).Msg("verification email sent")
	return nil
}

// LogMailer writes the code to the log instead of sending it. Used when no
// SMTP_URL is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{log: logger.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.log.Warn().Str("email", email).Str("code", code).Msg("SMTP_URL not set, verification code logged instead of sent")
	return nil
}
