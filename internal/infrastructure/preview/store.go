// Package preview keeps a bounded, most-recent-first log of simulated
// outbound emails so a client can read back codes without a real inbox.
//
// The freshness window used by LatestOTPFor is measured from the time the
// email was recorded. It is independent of the OTP manager's own record: a
// code that was already redeemed keeps being reported here until it ages out.
package preview

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/pkg/id"
	"github.com/thlight-panel/internal/pkg/timeago"
)

// Config bounds the log and the read-side views.
type Config struct {
	Capacity  int           // global cap on retained emails
	ListLimit int           // max entries returned by ListFor
	Freshness time.Duration // max age of a code returned by LatestOTPFor
}

// Log stores previews most-recent-first. Push must prepend and truncate to
// capacity atomically with respect to other Push calls.
type Log interface {
	Push(ctx context.Context, p domain.EmailPreview, capacity int) error
	All(ctx context.Context) ([]domain.EmailPreview, error)
}

// Store is the Email Preview Store. It satisfies otp.Mailer.
type Store struct {
	cfg Config
	log Log
	now func() time.Time
}

// NewStore wires a Store. A nil now defaults to time.Now.
func NewStore(cfg Config, log Log, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{cfg: cfg, log: log, now: now}
}

// Record appends a simulated email and returns its id. The oldest entries
// beyond Capacity are evicted.
func (s *Store) Record(ctx context.Context, recipient, subject, body, code string) (string, error) {
	now := s.now()
	p := domain.EmailPreview{
		ID:        id.NewAt(now),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: now,
		Code:      code,
	}
	if err := s.log.Push(ctx, p, s.cfg.Capacity); err != nil {
		return "", fmt.Errorf("record preview: %w", err)
	}
	return p.ID, nil
}

// Send records msg. It lets the store stand in for a real mail transport.
func (s *Store) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	return s.Record(ctx, msg.To, msg.Subject, msg.Body, msg.Code)
}

func (s *Store) matching(ctx context.Context, recipient string) ([]domain.EmailPreview, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, fmt.Errorf("email parameter is required: %w", domain.ErrBadRequest)
	}
	all, err := s.log.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read previews: %w", err)
	}
	var out []domain.EmailPreview
	for _, p := range all {
		if strings.EqualFold(p.Recipient, recipient) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListFor returns up to ListLimit of the newest previews sent to recipient,
// matched case-insensitively.
func (s *Store) ListFor(ctx context.Context, recipient string) ([]domain.PreviewEntry, error) {
	matched, err := s.matching(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if len(matched) > s.cfg.ListLimit {
		matched = matched[:s.cfg.ListLimit]
	}
	now := s.now()
	out := make([]domain.PreviewEntry, 0, len(matched))
	for _, p := range matched {
		out = append(out, domain.PreviewEntry{EmailPreview: p, TimeAgo: timeago.Since(p.CreatedAt, now)})
	}
	return out, nil
}

// LatestOTPFor returns the code carried by the newest code-bearing preview
// for recipient. Codes older than Freshness are withheld and flagged expired.
func (s *Store) LatestOTPFor(ctx context.Context, recipient string) (domain.LatestOTP, error) {
	matched, err := s.matching(ctx, recipient)
	if err != nil {
		return domain.LatestOTP{}, err
	}
	matched = slices.DeleteFunc(matched, func(p domain.EmailPreview) bool { return !p.HasCode() })
	if len(matched) == 0 {
		return domain.LatestOTP{}, nil
	}
	slices.SortStableFunc(matched, func(a, b domain.EmailPreview) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	latest := matched[0]
	now := s.now()
	res := domain.LatestOTP{Found: true, TimeAgo: timeago.Since(latest.CreatedAt, now)}
	if now.Sub(latest.CreatedAt) >= s.cfg.Freshness {
		res.Expired = true
		return res, nil
	}
	res.Code = latest.Code
	return res, nil
}

// MemoryLog is an in-process Log backed by a slice.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []domain.EmailPreview
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (l *MemoryLog) Push(_ context.Context, p domain.EmailPreview, capacity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Insert(l.entries, 0, p)
	if capacity > 0 && len(l.entries) > capacity {
		clear(l.entries[capacity:])
		l.entries = l.entries[:capacity]
	}
	return nil
}

// All returns a copy of the log, newest first.
func (l *MemoryLog) All(_ context.Context) ([]domain.EmailPreview, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries), nil
}
