package http

import (
	"context"

	"github.com/thlight-panel/internal/domain"
	jwtinfra "github.com/thlight-panel/internal/infrastructure/jwt"
	"github.com/thlight-panel/internal/infrastructure/state"
)

// OTPManager is the minimal interface the router requires from the OTP manager.
type OTPManager interface {
	Issue(ctx context.Context, address string, purpose domain.Purpose) (domain.IssuedOTP, error)
	Verify(ctx context.Context, address, candidate string) (domain.VerifyResult, error)
	Status(ctx context.Context, address string) (domain.OTPStatus, error)
}

// PreviewStore is the minimal interface the router requires from the email preview store.
type PreviewStore interface {
	ListFor(ctx context.Context, recipient string) ([]domain.PreviewEntry, error)
	LatestOTPFor(ctx context.Context, recipient string) (domain.LatestOTP, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Panel       *state.Store
	OTP         OTPManager
	Previews    PreviewStore
	JWTProvider *jwtinfra.Provider
}
