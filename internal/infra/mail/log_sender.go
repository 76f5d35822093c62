package mail

import (
	"context"
	"log/slog"

	"spurt/internal/domain/service"
)

// logSender only records that a message would have been sent. The body holds a
// confirmation token, so it is not logged.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates the development sender.
func NewLogSender(logger *slog.Logger) service.EmailSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	s.logger.InfoContext(ctx, "[LogMail] Email not delivered, log provider active",
		slog.String("to", msg.ToAddress),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.HTMLBody)),
	)

	return nil
}

func (s *logSender) Close() error {
	return nil
}
