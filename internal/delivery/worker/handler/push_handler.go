// Package handler contains the HTTP handlers of the mail worker.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"spurt/config"
	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/constants"
	"spurt/internal/domain/service"
	"spurt/internal/infra/mail"
	"spurt/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

const mailChannelWorker = "worker"

// TokenValidator checks a Pub/Sub push OIDC token for the given audience.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler delivers queued emails pushed by Pub/Sub
type PushHandler struct {
	verifyPushAuth bool
	audience       string
	validateToken  TokenValidator
	logger         *slog.Logger
	sender         service.EmailSender
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Sender service.EmailSender
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only pushes from Google outside develop carry a verifiable token
	verifyPushAuth := params.Config.Mail != nil &&
		params.Config.Mail.VerifyPush &&
		params.Config.Env.Env != constants.EnvDevelop

	var audience string
	if params.Config.Mail != nil {
		audience = params.Config.Mail.PushAudience
	}

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		audience:       audience,
		validateToken:  idtoken.Validate,
		logger:         params.Logger,
		sender:         params.Sender,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg mail.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Acknowledge malformed payloads; redelivery would never fix them
	msg, err := pushMsg.DecodeEmail()
	if err != nil {
		h.logger.Error("[Worker] Dropping undecodable message",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusOK)
	}

	requestID := extractRequestID(ctx, &pushMsg, msg)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Delivering email",
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("to", msg.ToAddress),
	)

	err = h.sender.Send(ctx, msg)
	metrics.MailSendTotal.WithLabelValues(mailChannelWorker, metrics.Result(err)).Inc()
	if err != nil {
		retryable := mail.IsRetryable(err)
		reqLogger.Error("[Worker] Failed to deliver email",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.String("to", msg.ToAddress),
			slog.Any("error", err),
			slog.Bool("retryable", retryable),
		)
		// 503 makes Pub/Sub redeliver; 200 stops permanent failures from looping
		if retryable {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Email delivered", slog.String("message_id", pushMsg.Message.MessageID))

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, the message, or generates a new one
func extractRequestID(ctx context.Context, pushMsg *mail.PushMessage, msg *service.EmailMessage) string {
	if requestID, ok := pushMsg.Message.Attributes[mail.AttrRequestID]; ok && requestID != "" {
		return requestID
	}

	if msg.RequestID != "" {
		return msg.RequestID
	}

	// From RequestIDMiddleware via X-Request-Id header
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	audience := h.pushAudience(req)

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}

// pushAudience returns the configured audience, or the URL of this endpoint as
// seen by the client. A TLS-terminating proxy reports the scheme in X-Forwarded-Proto.
func (h *PushHandler) pushAudience(req *http.Request) string {
	if h.audience != "" {
		return h.audience
	}

	scheme := "https"
	if proto := req.Header.Get(echo.HeaderXForwardedProto); proto != "" {
		scheme = proto
	} else if req.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
}
