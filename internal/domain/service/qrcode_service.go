package service

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateEventShareQR returns a PNG QR code that encodes the public page of an event.
	GenerateEventShareQR(eventID int64) ([]byte, error)

	// EventShareURL returns the link encoded by GenerateEventShareQR.
	EventShareURL(eventID int64) string
}
