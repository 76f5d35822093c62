package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"spurt/config"
	"spurt/internal/domain/service"
	"spurt/internal/infra/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type stubSender struct {
	err  error
	sent []*service.EmailMessage
}

func (s *stubSender) Send(_ context.Context, msg *service.EmailMessage) error {
	s.sent = append(s.sent, msg)

	return s.err
}

func (s *stubSender) Close() error {
	return nil
}

func newTestPushHandler(sender service.EmailSender, verify bool) *PushHandler {
	cfg := &config.Config{Mail: &config.MailConfig{VerifyPush: verify}}
	cfg.Env.Env = "production"

	return NewPushHandler(PushHandlerParams{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sender: sender,
	})
}

func pushRequest(t *testing.T, msg *service.EmailMessage) *http.Request {
	t.Helper()

	push, err := mail.NewPushMessage(msg, "projects/p/subscriptions/mail-sub")
	require.NoError(t, err)
	body, err := json.Marshal(push)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func serve(h *PushHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func TestPushHandler_Delivers(t *testing.T) {
	sender := &stubSender{}
	h := newTestPushHandler(sender, false)

	rec := serve(h, pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com", Subject: "Account Confirmation", RequestID: "req-1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].ToAddress)
}

func TestPushHandler_RetryClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "throttled", err: &mail.SendError{StatusCode: http.StatusTooManyRequests}, want: http.StatusServiceUnavailable},
		{name: "provider outage", err: &mail.SendError{StatusCode: http.StatusBadGateway}, want: http.StatusServiceUnavailable},
		{name: "transport", err: errors.New("connection reset"), want: http.StatusServiceUnavailable},
		{name: "rejected payload", err: &mail.SendError{StatusCode: http.StatusBadRequest}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestPushHandler(&stubSender{err: tt.err}, false)

			rec := serve(h, pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com"}))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPushHandler_UndecodableMessageIsAcknowledged(t *testing.T) {
	sender := &stubSender{}
	h := newTestPushHandler(sender, false)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader([]byte(`{"message":{"data":"not base64!"}}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.sent)
}

func TestPushHandler_VerifiesPushToken(t *testing.T) {
	sender := &stubSender{}
	h := newTestPushHandler(sender, true)
	require.True(t, h.verifyPushAuth)

	var gotAudience string
	h.validateToken = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		if token != "good" {
			return nil, errors.New("bad signature")
		}

		return &idtoken.Payload{Issuer: "https://accounts.google.com", Claims: map[string]any{"email_verified": true}}, nil
	}

	rec := serve(h, pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com"})
	req.Header.Set("Authorization", "Bearer wrong")
	rec = serve(h, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com"})
	req.Header.Set("Authorization", "Bearer good")
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://example.com/push", gotAudience)
	assert.Len(t, sender.sent, 1)
}

func TestPushHandler_SkipsVerificationInDevelop(t *testing.T) {
	cfg := &config.Config{Mail: &config.MailConfig{VerifyPush: true}}
	cfg.Env.Env = "develop"

	h := NewPushHandler(PushHandlerParams{Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Sender: &stubSender{}})
	assert.False(t, h.verifyPushAuth)
}

func TestPushHandler_PushAudience(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		forwarded  string
		want       string
	}{
		{name: "derived from plain request", want: "http://example.com/push"},
		{name: "forwarded proto from TLS proxy", forwarded: "https", want: "https://example.com/push"},
		{name: "configured audience wins", configured: "https://mail.spurt.example/push", forwarded: "http", want: "https://mail.spurt.example/push"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Mail: &config.MailConfig{VerifyPush: true, PushAudience: tt.configured}}
			cfg.Env.Env = "production"
			h := NewPushHandler(PushHandlerParams{Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Sender: &stubSender{}})

			var gotAudience string
			h.validateToken = func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
				gotAudience = audience

				return &idtoken.Payload{Issuer: "accounts.google.com"}, nil
			}

			req := pushRequest(t, &service.EmailMessage{ToAddress: "ada@example.com"})
			req.Header.Set("Authorization", "Bearer good")
			if tt.forwarded != "" {
				req.Header.Set(echo.HeaderXForwardedProto, tt.forwarded)
			}

			rec := serve(h, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, gotAudience)
		})
	}
}
