package service

import (
	"context"

	"github.com/rs/zerolog"
)

// OTPSender delivers one-time codes to users.
type OTPSender interface {
	Send(ctx context.Context, email, code, purpose string) error
}

// LogOTPSender is a basic provider that logs issued codes. Production
// deployments swap in a real mail provider behind the same interface.
type LogOTPSender struct {
	logger zerolog.Logger
}

// NewLogOTPSender constructs a logging provider.
func NewLogOTPSender(logger zerolog.Logger) *LogOTPSender {
	return &LogOTPSender{logger: logger.With().Str("component", "otp_sender").Logger()}
}

// Send logs the issued code and returns nil to indicate success.
func (l *LogOTPSender) Send(ctx context.Context, email, code, purpose string) error {
	l.logger.Info().Str("email", email).Str("purpose", purpose).Msg("one-time code issued")
	return nil
}
