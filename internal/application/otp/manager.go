// Package otp issues and verifies one-time codes scoped to an email address.
//
// At most one code is pending per address. Issuing replaces the pending code
// and resets its attempt counter. Expiry is checked lazily when a record is
// read; an optional janitor can purge stale records but verification never
// depends on it.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/thlight-panel/internal/domain"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Config controls code lifetime and the number of tolerated wrong guesses.
type Config struct {
	TTL         time.Duration
	MaxAttempts int
}

// Mailer delivers a rendered message and returns an identifier for it.
type Mailer interface {
	Send(ctx context.Context, msg domain.OutboundEmail) (string, error)
}

// Store persists the pending record per address.
//
// Update must apply fn's decision atomically with respect to every other
// writer of address, including other processes sharing the backend. fn may be
// called more than once when an optimistic backend retries, so it must not
// have side effects beyond its captured result.
type Store interface {
	Get(ctx context.Context, address string) (domain.OTPRecord, bool, error)
	Put(ctx context.Context, rec domain.OTPRecord) error
	Delete(ctx context.Context, address string) error
	Update(ctx context.Context, address string, fn func(rec *domain.OTPRecord, found bool) domain.RecordChange) error
}

// Purger is implemented by stores that can drop expired records in bulk.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// Manager is the sole writer of OTP records. It holds no lock of its own;
// the attempt budget is enforced by Store.Update.
type Manager struct {
	cfg      Config
	store    Store
	mailer   Mailer
	now      func() time.Time
	generate func() (string, error)
}

// NewManager wires a Manager. A nil now defaults to time.Now.
func NewManager(cfg Config, store Store, mailer Mailer, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		mailer:   mailer,
		now:      now,
		generate: GenerateCode,
	}
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Issue creates a fresh code for address, replacing any pending one, and
// hands the rendered email to the mailer. A delivery failure is logged but
// does not invalidate the code.
func (m *Manager) Issue(ctx context.Context, address string, purpose domain.Purpose) (domain.IssuedOTP, error) {
	key := normalizeAddress(address)
	if key == "" {
		return domain.IssuedOTP{}, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	code, err := m.generate()
	if err != nil {
		return domain.IssuedOTP{}, err
	}
	rec := domain.OTPRecord{
		Address:   key,
		Code:      code,
		ExpiresAt: m.now().Add(m.cfg.TTL),
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return domain.IssuedOTP{}, fmt.Errorf("store otp: %w", err)
	}

	subject, body := Render(purpose, code, m.cfg.TTL)
	issued := domain.IssuedOTP{Address: key, ExpiresAt: rec.ExpiresAt}
	emailID, err := m.mailer.Send(ctx, domain.OutboundEmail{
		To:      strings.TrimSpace(address),
		Subject: subject,
		Body:    body,
		Code:    code,
	})
	if err != nil {
		slog.Warn("otp email delivery failed; code remains valid", "email", key, "purpose", purpose, "err", err)
		return issued, nil
	}
	issued.EmailID = emailID
	slog.Info("otp issued", "email", key, "purpose", purpose, "email_id", emailID, "expires_at", rec.ExpiresAt)
	return issued, nil
}

// Verify redeems candidate against the pending record for address.
// Checks run in order: existence, expiry, attempt budget, code match.
func (m *Manager) Verify(ctx context.Context, address, candidate string) (domain.VerifyResult, error) {
	key := normalizeAddress(address)
	if key == "" || candidate == "" {
		return domain.VerifyResult{}, fmt.Errorf("email and otp are required: %w", domain.ErrBadRequest)
	}

	now := m.now()
	var res domain.VerifyResult
	err := m.store.Update(ctx, key, func(rec *domain.OTPRecord, found bool) domain.RecordChange {
		switch {
		case !found:
			res = domain.VerifyResult{Reason: domain.VerifyNoPendingCode}
			return domain.RecordKeep
		case rec.Expired(now):
			res = domain.VerifyResult{Reason: domain.VerifyExpired}
			return domain.RecordDelete
		case rec.Attempts >= m.cfg.MaxAttempts:
			res = domain.VerifyResult{Reason: domain.VerifyTooManyAttempts}
			return domain.RecordDelete
		case subtle.ConstantTimeCompare([]byte(rec.Code), []byte(candidate)) != 1:
			rec.Attempts++
			res = domain.VerifyResult{
				Reason:    domain.VerifyIncorrectCode,
				Remaining: m.cfg.MaxAttempts - rec.Attempts,
			}
			return domain.RecordSave
		default:
			res = domain.VerifyResult{Success: true, Reason: domain.VerifyOK}
			return domain.RecordDelete
		}
	})
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("verify otp: %w", err)
	}
	return res, nil
}

// Status reports the pending record for address without mutating it.
func (m *Manager) Status(ctx context.Context, address string) (domain.OTPStatus, error) {
	key := normalizeAddress(address)
	if key == "" {
		return domain.OTPStatus{}, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	rec, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return domain.OTPStatus{}, fmt.Errorf("load otp: %w", err)
	}
	if !ok {
		return domain.OTPStatus{}, nil
	}
	return domain.OTPStatus{
		Exists:    true,
		ExpiresAt: rec.ExpiresAt,
		Attempts:  rec.Attempts,
		Expired:   rec.Expired(m.now()),
	}, nil
}

// PurgeExpired drops every expired record when the store supports it.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	p, ok := m.store.(Purger)
	if !ok {
		return 0, nil
	}
	return p.PurgeExpired(ctx, m.now())
}

// RunJanitor calls PurgeExpired every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("otp purge failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("otp purge", "removed", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
