package redisstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/application/otp"
	"github.com/thlight-panel/internal/domain"
)

var baseTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	mr.SetTime(baseTime)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func TestOTPStore_KeyPrefix(t *testing.T) {
	s := NewOTPStore(nil, 0)
	assert.Equal(t, "otp:user@gmail.com", s.key("user@gmail.com"))
}

func TestOTPStore_PutGetDelete(t *testing.T) {
	_, client := newRedis(t)
	s := NewOTPStore(client, 10*time.Minute)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "user@gmail.com")
	require.NoError(t, err)
	assert.False(t, found)

	rec := domain.OTPRecord{Address: "user@gmail.com", Code: "123456", ExpiresAt: baseTime.Add(5 * time.Minute), Attempts: 1}
	require.NoError(t, s.Put(ctx, rec))

	got, found, err := s.Get(ctx, "user@gmail.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Code, got.Code)
	assert.Equal(t, rec.Attempts, got.Attempts)
	assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, s.Delete(ctx, "user@gmail.com"))
	_, found, err = s.Get(ctx, "user@gmail.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOTPStore_PutSetsExpiryPastRetention(t *testing.T) {
	mr, client := newRedis(t)
	s := NewOTPStore(client, 10*time.Minute)
	rec := domain.OTPRecord{Address: "user@gmail.com", Code: "123456", ExpiresAt: baseTime.Add(5 * time.Minute)}
	require.NoError(t, s.Put(context.Background(), rec))

	assert.Equal(t, 15*time.Minute, mr.TTL("otp:user@gmail.com"))

	mr.FastForward(15*time.Minute + time.Second)
	assert.False(t, mr.Exists("otp:user@gmail.com"))
}

func TestOTPStore_Update(t *testing.T) {
	mr, client := newRedis(t)
	s := NewOTPStore(client, 10*time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, domain.OTPRecord{Address: "user@gmail.com", Code: "123456", ExpiresAt: baseTime.Add(5 * time.Minute)}))

	require.NoError(t, s.Update(ctx, "user@gmail.com", func(rec *domain.OTPRecord, found bool) domain.RecordChange {
		assert.True(t, found)
		rec.Attempts++
		return domain.RecordSave
	}))
	got, _, err := s.Get(ctx, "user@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, 15*time.Minute, mr.TTL("otp:user@gmail.com"))

	require.NoError(t, s.Update(ctx, "user@gmail.com", func(*domain.OTPRecord, bool) domain.RecordChange {
		return domain.RecordDelete
	}))
	assert.False(t, mr.Exists("otp:user@gmail.com"))

	require.NoError(t, s.Update(ctx, "user@gmail.com", func(_ *domain.OTPRecord, found bool) domain.RecordChange {
		assert.False(t, found)
		return domain.RecordKeep
	}))
	assert.False(t, mr.Exists("otp:user@gmail.com"))
}

func TestOTPStore_ReplicasShareAttemptBudget(t *testing.T) {
	_, client := newRedis(t)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.Anything).Return("email-1", nil)
	cfg := otp.Config{TTL: 5 * time.Minute, MaxAttempts: 3}
	now := func() time.Time { return baseTime }

	replicas := make([]*otp.Manager, 8)
	for i := range replicas {
		// Each replica gets its own store and connection pool.
		replicas[i] = otp.NewManager(cfg, NewOTPStore(redis.NewClient(client.Options()), 10*time.Minute), ml, now)
	}
	ctx := context.Background()
	_, err := replicas[0].Issue(ctx, "user@gmail.com", domain.PurposeReset)
	require.NoError(t, err)
	bad := "000000" // below the generated range

	var wg sync.WaitGroup
	var mu sync.Mutex
	reasons := map[domain.VerifyReason]int{}
	for _, m := range replicas {
		wg.Add(1)
		go func(m *otp.Manager) {
			defer wg.Done()
			res, err := m.Verify(ctx, "user@gmail.com", bad)
			assert.NoError(t, err)
			mu.Lock()
			reasons[res.Reason]++
			mu.Unlock()
		}(m)
	}
	wg.Wait()

	assert.Equal(t, 3, reasons[domain.VerifyIncorrectCode])
	assert.Equal(t, 1, reasons[domain.VerifyTooManyAttempts])
	assert.Equal(t, 4, reasons[domain.VerifyNoPendingCode])
}
