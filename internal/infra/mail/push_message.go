// Package mail delivers outbound email directly or through a Pub/Sub queue.
package mail

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"spurt/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Attribute keys set on queued mail messages.
const (
	AttrRequestID = "request_id"
	AttrKind      = "kind"

	kindEmail = "email"
)

// PushMessage represents the structure of a Pub/Sub push message
// This mimics the format Google Pub/Sub uses when pushing to HTTP endpoints
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewPushMessage wraps msg in a push envelope as Pub/Sub would deliver it.
func NewPushMessage(msg *service.EmailMessage, subscription string) (*PushMessage, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	push := &PushMessage{Subscription: subscription}
	push.Message.Data = base64.StdEncoding.EncodeToString(data)
	push.Message.Attributes = messageAttributes(msg)
	push.Message.MessageID = uuid.New().String()
	push.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)

	return push, nil
}

// DecodeEmail extracts the queued EmailMessage.
func (p *PushMessage) DecodeEmail() (*service.EmailMessage, error) {
	data, err := base64.StdEncoding.DecodeString(p.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode message data")
	}

	var msg service.EmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to parse email message")
	}
	if msg.ToAddress == "" {
		return nil, errors.New("email message has no recipient")
	}

	return &msg, nil
}

func messageAttributes(msg *service.EmailMessage) map[string]string {
	attributes := map[string]string{
		AttrKind: kindEmail,
	}
	if msg.RequestID != "" {
		attributes[AttrRequestID] = msg.RequestID
	}

	return attributes
}
