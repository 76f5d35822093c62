package impl

import (
	"context"
	"testing"

	domainerrors "spurt/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberService_Subscribe(t *testing.T) {
	store := newMemStore()
	service := NewSubscriberService(SubscriberServiceParams{
		SubscriberRepo: &fakeSubscriberRepo{store: store},
		UniquenessRepo: &fakeUniquenessRepo{store: store},
		Logger:         newDiscardLogger(),
	})
	ctx := context.Background()

	sub, err := service.Subscribe(ctx, " fan@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", sub.Email)

	_, err = service.Subscribe(ctx, "fan@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSubscriberAlreadyExists))

	// Subscriber emails compare exactly.
	_, err = service.Subscribe(ctx, "FAN@example.com")
	require.NoError(t, err)

	_, err = service.Subscribe(ctx, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
}
