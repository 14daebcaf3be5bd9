package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thlight-panel/internal/domain"
)

// Optimistic transactions give up after this many conflicting writers.
const maxTxRetries = 16

// OTPStore keeps one JSON record per address. Keys outlive the record's
// logical expiry by retention so a late verify still reports "expired"
// rather than "no pending code"; Redis then reclaims them on its own.
type OTPStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

func NewOTPStore(client redis.UniversalClient, retention time.Duration) *OTPStore {
	return &OTPStore{client: client, prefix: "otp:", retention: retention}
}

func (s *OTPStore) key(address string) string { return s.prefix + address }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *OTPStore) read(ctx context.Context, c getter, key string) (domain.OTPRecord, bool, error) {
	b, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.OTPRecord{}, false, nil
	}
	if err != nil {
		return domain.OTPRecord{}, false, err
	}
	var rec domain.OTPRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.OTPRecord{}, false, fmt.Errorf("decode otp record: %w", err)
	}
	return rec, true, nil
}

func (s *OTPStore) write(ctx context.Context, p redis.Pipeliner, key string, rec domain.OTPRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode otp record: %w", err)
	}
	p.Set(ctx, key, b, 0)
	p.ExpireAt(ctx, key, rec.ExpiresAt.Add(s.retention))
	return nil
}

func (s *OTPStore) Get(ctx context.Context, address string) (domain.OTPRecord, bool, error) {
	return s.read(ctx, s.client, s.key(address))
}

func (s *OTPStore) Put(ctx context.Context, rec domain.OTPRecord) error {
	key := s.key(rec.Address)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return s.write(ctx, p, key, rec)
	})
	return err
}

func (s *OTPStore) Delete(ctx context.Context, address string) error {
	return s.client.Del(ctx, s.key(address)).Err()
}

// Update reads the record under WATCH and commits fn's decision in MULTI/EXEC.
// A concurrent write to the key aborts the EXEC and the whole step is retried,
// so replicas sharing the database never apply two decisions to one version.
func (s *OTPStore) Update(ctx context.Context, address string, fn func(rec *domain.OTPRecord, found bool) domain.RecordChange) error {
	key := s.key(address)
	step := func(tx *redis.Tx) error {
		rec, found, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		change := fn(&rec, found)
		if change == domain.RecordKeep {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if change == domain.RecordDelete {
				p.Del(ctx, key)
				return nil
			}
			return s.write(ctx, p, key, rec)
		})
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, step, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update otp %s: %w", address, redis.TxFailedErr)
}
