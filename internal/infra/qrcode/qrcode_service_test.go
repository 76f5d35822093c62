package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"spurt/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "h"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel, "https://spurt.example")
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_EventShareURL(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://spurt.example/")

	assert.Equal(t, "https://spurt.example/events/7", service.EventShareURL(7))
}

func TestQRCodeService_GenerateEventShareQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://spurt.example")

	qrBytes, err := service.GenerateEventShareQR(7)
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, qrBytes[:4])

	img, err := png.Decode(bytes.NewReader(qrBytes))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestQRCodeService_DifferentSizes(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		service := NewQRCodeService(size, "M", "https://spurt.example")

		qrBytes, err := service.GenerateEventShareQR(1)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(qrBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestNewFromConfig_FallsBackWithoutSection(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.PublicOrigin = "http://localhost:4200"

	service := NewFromConfig(cfg)
	assert.Equal(t, "http://localhost:4200/events/3", service.EventShareURL(3))

	qrBytes, err := service.GenerateEventShareQR(3)
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)
}
