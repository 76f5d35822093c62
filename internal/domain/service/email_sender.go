package service

import "context"

// EmailMessage is a single outbound HTML email.
type EmailMessage struct {
	FromAddress string `json:"fromAddress"`
	FromName    string `json:"fromName"`
	ToAddress   string `json:"toAddress"`
	ToName      string `json:"toName"`
	Subject     string `json:"subject"`
	HTMLBody    string `json:"htmlBody"`
	RequestID   string `json:"requestId,omitempty"` // Request ID for tracing
}

// EmailSender hands messages to a delivery channel.
type EmailSender interface {
	Send(ctx context.Context, msg *EmailMessage) error

	// Close releases resources held by the sender.
	Close() error
}
