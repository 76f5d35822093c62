package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"spurt/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	// DefaultSendGridHost is the SendGrid API host.
	DefaultSendGridHost = "https://api.sendgrid.com"

	sendGridMailPath = "/v3/mail/send"
	maxErrorBody     = 1024
)

// SendError reports a non-success response from the mail API.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sendgrid returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *SendError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable reports whether a send failure is worth redelivering. Transport
// failures and throttling are retryable, rejected payloads are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Temporary()
	}

	return true
}

// sendGridSender delivers HTML mail through the SendGrid v3 API.
type sendGridSender struct {
	apiKey string
	host   string
	client *rest.Client
	logger *slog.Logger
}

// NewSendGridSender creates a sender for the SendGrid API. An empty host uses the public API.
func NewSendGridSender(apiKey, host string, timeout time.Duration, logger *slog.Logger) (service.EmailSender, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if host == "" {
		host = DefaultSendGridHost
	}

	return &sendGridSender{
		apiKey: apiKey,
		host:   host,
		client: &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		logger: logger,
	}, nil
}

// newSendGridMail builds the v3 payload for msg.
func newSendGridMail(msg *service.EmailMessage) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(msg.FromName, msg.FromAddress)
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)

	return sgmail.NewV3MailInit(from, msg.Subject, to, sgmail.NewContent("text/html", msg.HTMLBody))
}

func (s *sendGridSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	request := sendgrid.GetRequest(s.apiKey, sendGridMailPath, s.host)
	request.Method = rest.Post
	request.Body = sgmail.GetRequestBody(newSendGridMail(msg))

	resp, err := s.client.SendWithContext(ctx, request)
	if err != nil {
		return errors.Wrap(err, "sendgrid request failed")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body := resp.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}

		return &SendError{StatusCode: resp.StatusCode, Body: body}
	}

	var messageID string
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		messageID = ids[0]
	}
	s.logger.InfoContext(ctx, "[SendGrid] Email accepted",
		slog.String("to", msg.ToAddress),
		slog.String("message_id", messageID),
	)

	return nil
}

func (s *sendGridSender) Close() error {
	s.client.HTTPClient.CloseIdleConnections()

	return nil
}
