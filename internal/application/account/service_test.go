package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/infrastructure/state"
)

// --- mocks ---

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context, address, code string) (domain.VerifyResult, error) {
	args := m.Called(ctx, address, code)
	return args.Get(0).(domain.VerifyResult), args.Error(1)
}

// --- helpers ---

func newTestService(t *testing.T) (Service, *state.Store, *mockJWTSigner, *mockVerifier) {
	t.Helper()
	panel := state.NewStore(state.NewMemoryBackend())
	signer := &mockJWTSigner{}
	signer.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("bearer", nil).Maybe()
	verifier := &mockVerifier{}
	svc := NewService(ServiceDeps{
		Panel:       panel,
		OTP:         verifier,
		JWTProvider: signer,
		OwnerEmail:  "Boss@gmail.com",
		Now:         func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return svc, panel, signer, verifier
}

func register(t *testing.T, svc Service, username, email, password string) *domain.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return res
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	svc, panel, _, _ := newTestService(t)

	res := register(t, svc, "alex", " Alex@Gmail.com ", "secret1")
	assert.Equal(t, "bearer", res.Token)
	assert.Equal(t, "alex@gmail.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)

	_ = panel.View(context.Background(), func(p *state.Panel) error {
		u := p.UserByEmail("alex@gmail.com")
		require.NotNil(t, u)
		assert.NotEqual(t, "secret1", u.PasswordHash)
		return nil
	})
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: "other", Email: "ALEX@gmail.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: "ALEX", Email: "b@gmail.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_BannedEmail(t *testing.T) {
	svc, panel, _, _ := newTestService(t)
	require.NoError(t, panel.Update(context.Background(), func(p *state.Panel) error {
		p.BannedEmails = []string{"bad@gmail.com"}
		return nil
	}))

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Username: "bad", Email: "bad@gmail.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestRegister_OwnerGetsOwnerRole(t *testing.T) {
	svc, _, signer, _ := newTestService(t)

	res := register(t, svc, "boss", "boss@gmail.com", "secret1")
	assert.Equal(t, domain.RoleOwner, res.User.Role)
	assert.True(t, res.User.HasUnlimitedServers)
	signer.AssertCalled(t, "Sign", res.User.UserID, "boss@gmail.com", domain.RoleOwner)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")

	res, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ALEX@gmail.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alex", res.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alex@gmail.com", Password: "nope123"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@gmail.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_BannedUnlessOwner(t *testing.T) {
	svc, panel, _, _ := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")
	register(t, svc, "boss", "boss@gmail.com", "secret1")
	require.NoError(t, panel.Update(context.Background(), func(p *state.Panel) error {
		p.BannedEmails = []string{"alex@gmail.com", "boss@gmail.com"}
		return nil
	}))

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alex@gmail.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "boss@gmail.com", Password: "secret1"})
	assert.NoError(t, err)
}

// --- ResetPassword ---

func TestResetPassword_Success(t *testing.T) {
	svc, _, _, verifier := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")
	verifier.On("Verify", mock.Anything, "alex@gmail.com", "123456").
		Return(domain.VerifyResult{Success: true, Reason: domain.VerifyOK}, nil)

	err := svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Email: "alex@gmail.com", OTP: "123456", NewPassword: "newpass1"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "alex@gmail.com", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestResetPassword_BadCode(t *testing.T) {
	svc, _, _, verifier := newTestService(t)
	register(t, svc, "alex", "alex@gmail.com", "secret1")
	verifier.On("Verify", mock.Anything, "alex@gmail.com", "000000").
		Return(domain.VerifyResult{Reason: domain.VerifyIncorrectCode, Remaining: 2}, nil)

	err := svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Email: "alex@gmail.com", OTP: "000000", NewPassword: "newpass1"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.ErrorContains(t, err, "2 attempts remaining")
}

func TestResetPassword_UnknownAccountSkipsVerify(t *testing.T) {
	svc, _, _, verifier := newTestService(t)

	err := svc.ResetPassword(context.Background(), domain.ResetPasswordRequest{Email: "ghost@gmail.com", OTP: "123456", NewPassword: "newpass1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}

// --- Me ---

func TestMe_CountsServers(t *testing.T) {
	svc, panel, _, _ := newTestService(t)
	res := register(t, svc, "alex", "alex@gmail.com", "secret1")
	require.NoError(t, panel.Update(context.Background(), func(p *state.Panel) error {
		p.Servers = []domain.Server{
			{ServerID: "1", OwnerEmail: "alex@gmail.com", Plan: domain.FreePlanID},
			{ServerID: "2", OwnerEmail: "alex@gmail.com", Plan: "premium"},
			{ServerID: "3", OwnerEmail: "someone@gmail.com", Plan: domain.FreePlanID},
		}
		return nil
	}))

	prof, err := svc.Me(context.Background(), res.User.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, prof.ServerCount)
	assert.Equal(t, 1, prof.FreeServerCount)
}

func TestMe_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Me(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
