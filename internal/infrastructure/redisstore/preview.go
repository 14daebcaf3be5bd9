package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/thlight-panel/internal/domain"
)

// PreviewLog stores previews in a Redis list, newest at the head.
type PreviewLog struct {
	client redis.Cmdable
	key    string
}

func NewPreviewLog(client redis.Cmdable) *PreviewLog {
	return &PreviewLog{client: client, key: "email-previews"}
}

// Push prepends p and trims the list in one MULTI/EXEC.
func (l *PreviewLog) Push(ctx context.Context, p domain.EmailPreview, capacity int) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, l.key, b)
		if capacity > 0 {
			pipe.LTrim(ctx, l.key, 0, int64(capacity-1))
		}
		return nil
	})
	return err
}

func (l *PreviewLog) All(ctx context.Context) ([]domain.EmailPreview, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodePreviews(raw), nil
}

// decodePreviews skips entries that fail to decode rather than failing the read.
func decodePreviews(raw []string) []domain.EmailPreview {
	out := make([]domain.EmailPreview, 0, len(raw))
	for _, s := range raw {
		var p domain.EmailPreview
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			slog.Warn("skipping malformed email preview", "err", err)
			continue
		}
		out = append(out, p)
	}
	return out
}
