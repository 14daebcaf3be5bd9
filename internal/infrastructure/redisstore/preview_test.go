package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/domain"
)

func TestDecodePreviews_SkipsMalformed(t *testing.T) {
	raw := []string{
		`{"id":"2","recipient":"a@gmail.com","code":"222222","created_at":"2024-06-01T10:01:00Z"}`,
		`not json`,
		`{"id":"1","recipient":"a@gmail.com","created_at":"2024-06-01T10:00:00Z"}`,
	}
	got := decodePreviews(raw)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "222222", got[0].Code)
	assert.Equal(t, "1", got[1].ID)
	assert.False(t, got[1].HasCode())
}

func TestPreviewLog_PushNewestFirstAndCapped(t *testing.T) {
	mr, client := newRedis(t)
	log := NewPreviewLog(client)
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		p := domain.EmailPreview{
			ID:        fmt.Sprintf("e%d", i),
			Recipient: "a@gmail.com",
			Subject:   "Your code",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, log.Push(ctx, p, 10))
	}

	raw, err := mr.List("email-previews")
	require.NoError(t, err)
	assert.Len(t, raw, 10)

	got, err := log.All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "e11", got[0].ID)
	assert.Equal(t, "e2", got[9].ID)
}

func TestPreviewLog_AllEmpty(t *testing.T) {
	_, client := newRedis(t)
	got, err := NewPreviewLog(client).All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
