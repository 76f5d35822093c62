package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spurt/config"
	"spurt/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMessage() *service.EmailMessage {
	return &service.EmailMessage{
		FromAddress: "noreply@234spaces.com",
		FromName:    "234Spaces Admin",
		ToAddress:   "ada@example.com",
		ToName:      "Ada",
		Subject:     "Account Confirmation",
		HTMLBody:    "<div><a>http://localhost/confirm-email?token=t</a></div>",
		RequestID:   "req-123",
	}
}

type wireAddress struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type wireMail struct {
	Personalizations []struct {
		To []wireAddress `json:"to"`
	} `json:"personalizations"`
	From    wireAddress `json:"from"`
	Subject string      `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendGridSender_Send(t *testing.T) {
	var got wireMail
	var authHeader, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender, err := NewSendGridSender("sg-key", server.URL, time.Second, newDiscardLogger())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), newTestMessage()))

	assert.Equal(t, "Bearer sg-key", authHeader)
	assert.Equal(t, "/v3/mail/send", path)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, []wireAddress{{Email: "ada@example.com", Name: "Ada"}}, got.Personalizations[0].To)
	assert.Equal(t, wireAddress{Email: "noreply@234spaces.com", Name: "234Spaces Admin"}, got.From)
	assert.Equal(t, "Account Confirmation", got.Subject)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/html", got.Content[0].Type)
	assert.Equal(t, newTestMessage().HTMLBody, got.Content[0].Value)
}

func TestSendGridSender_TransportErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host := server.URL
	server.Close()

	sender, err := NewSendGridSender("sg-key", host, time.Second, newDiscardLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), newTestMessage())
	require.Error(t, err)

	var sendErr *SendError
	assert.False(t, errors.As(err, &sendErr))
	assert.True(t, IsRetryable(err))
}

func TestSendGridSender_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "bad request is permanent", status: http.StatusBadRequest, retryable: false},
		{name: "throttled is retryable", status: http.StatusTooManyRequests, retryable: true},
		{name: "server error is retryable", status: http.StatusBadGateway, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":[{"message":"nope"}]}`))
			}))
			defer server.Close()

			sender, err := NewSendGridSender("sg-key", server.URL, time.Second, newDiscardLogger())
			require.NoError(t, err)

			err = sender.Send(context.Background(), newTestMessage())
			require.Error(t, err)

			var sendErr *SendError
			require.True(t, errors.As(err, &sendErr))
			assert.Equal(t, tt.status, sendErr.StatusCode)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestIsRetryable_TransportError(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("connection refused")))
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	_, err := NewSendGridSender("", "", time.Second, newDiscardLogger())
	assert.Error(t, err)
}

func TestLocalHTTPSender_PushesEnvelope(t *testing.T) {
	var push PushMessage
	var requestIDHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDHeader = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&push))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewLocalHTTPSender(server.URL, time.Second, newDiscardLogger())
	require.NoError(t, sender.Send(context.Background(), newTestMessage()))

	assert.Equal(t, "req-123", requestIDHeader)
	assert.Equal(t, localSubscription, push.Subscription)
	assert.Equal(t, "req-123", push.Message.Attributes[AttrRequestID])
	assert.NotEmpty(t, push.Message.MessageID)

	decoded, err := push.DecodeEmail()
	require.NoError(t, err)
	assert.Equal(t, newTestMessage(), decoded)
}

func TestLocalHTTPSender_WorkerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := NewLocalHTTPSender(server.URL, time.Second, newDiscardLogger())
	err := sender.Send(context.Background(), newTestMessage())
	assert.ErrorContains(t, err, "503")
}

func TestPushMessage_DecodeEmailRejectsGarbage(t *testing.T) {
	push := &PushMessage{}
	push.Message.Data = "%%%not-base64"

	_, err := push.DecodeEmail()
	assert.Error(t, err)

	push, err = NewPushMessage(&service.EmailMessage{Subject: "no recipient"}, localSubscription)
	require.NoError(t, err)

	_, err = push.DecodeEmail()
	assert.ErrorContains(t, err, "no recipient")
}

func TestNewEmailSender_ProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		mail    *config.MailConfig
		wantErr bool
	}{
		{name: "missing section falls back to log", mail: nil},
		{name: "log", mail: &config.MailConfig{Provider: "log"}},
		{name: "local", mail: &config.MailConfig{Provider: "local", LocalEndpoint: "http://localhost:8081/push"}},
		{name: "local without endpoint", mail: &config.MailConfig{Provider: "local"}, wantErr: true},
		{name: "sendgrid", mail: &config.MailConfig{Provider: "sendgrid", SendGrid: config.SendGridConfig{APIKey: "k"}}},
		{name: "pubsub without topic", mail: &config.MailConfig{Provider: "pubsub", PubSub: config.PubSubConfig{ProjectID: "p"}}, wantErr: true},
		{name: "unknown", mail: &config.MailConfig{Provider: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			sender, err := NewEmailSender(SenderParams{
				Lc:     lc,
				Ctx:    context.Background(),
				Config: &config.Config{Mail: tt.mail},
				Logger: newDiscardLogger(),
			})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, sender)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sender)
		})
	}
}
