package rediskv

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := Connect(ctx, url)
	require.NoError(t, err)
	prefix := "test:" + uuid.NewString() + ":"
	s := New(client, prefix)
	t.Cleanup(func() {
		client.Del(context.Background(), prefix+"expenses")
		s.Close()
	})

	_, ok, err := s.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "expenses", "[]"))
	v, ok, err := s.Get(ctx, "expenses")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}
