package qrcode

import (
	"strconv"
	"strings"

	"spurt/config"
	"spurt/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	publicOrigin         string
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel, publicOrigin string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		publicOrigin:         strings.TrimRight(publicOrigin, "/"),
	}
}

// NewFromConfig builds the QR code service from the qrcode and app sections.
func NewFromConfig(cfg *config.Config) service.QRCodeService {
	size, level := defaultSize, "M"
	if cfg.QRCode != nil {
		size, level = cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel
	}

	return NewQRCodeService(size, level, cfg.App.PublicOrigin)
}

// EventShareURL returns the public page of an event.
func (s *qrcodeService) EventShareURL(eventID int64) string {
	return s.publicOrigin + "/events/" + strconv.FormatInt(eventID, 10)
}

// GenerateEventShareQR generates a PNG QR code pointing at the event's public page
func (s *qrcodeService) GenerateEventShareQR(eventID int64) ([]byte, error) {
	qrCode, err := qrcode.New(s.EventShareURL(eventID), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
