package gallery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Without a database every operation must fail with ErrUnavailable instead of
// panicking; the API boots in this degraded mode when DATABASE_URL is unset.
func TestServiceWithoutDatabase(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.Create(ctx, CreateRequest{Prompt: "a red sneaker", Source: "api"})
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, svc.MarkReady(ctx, id, "http://cdn/img.png"), ErrUnavailable)
	assert.ErrorIs(t, svc.MarkFailed(ctx, id, "boom"), ErrUnavailable)

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.ListBySession(ctx, id, 10, 0)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.SearchSimilar(ctx, "red sneaker", 5)
	assert.ErrorIs(t, err, ErrUnavailable)
}
