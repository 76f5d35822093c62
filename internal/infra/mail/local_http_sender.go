package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/service"

	"github.com/pkg/errors"
)

const localSubscription = "projects/local/subscriptions/mail-sub"

// localHTTPSender posts push envelopes straight to the mail worker, simulating
// Pub/Sub push delivery for development.
type localHTTPSender struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocalHTTPSender creates a new local HTTP sender for development
func NewLocalHTTPSender(endpoint string, timeout time.Duration, logger *slog.Logger) service.EmailSender {
	return &localHTTPSender{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (s *localHTTPSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	pushMsg, err := NewPushMessage(msg, localSubscription)
	if err != nil {
		return err
	}

	body, err := json.Marshal(pushMsg)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if msg.RequestID != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, msg.RequestID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("worker returned non-success status: %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "[LocalPubSub] Email pushed to worker",
		slog.String("endpoint", s.endpoint),
		slog.String("message_id", pushMsg.Message.MessageID),
	)

	return nil
}

// Close releases resources (no-op for HTTP client)
func (s *localHTTPSender) Close() error {
	return nil
}
