package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/infrastructure/state"
	"github.com/thlight-panel/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
	Me(ctx context.Context, userID string) (*domain.Profile, error)
}

type panelStore interface {
	View(ctx context.Context, fn func(p *state.Panel) error) error
	Update(ctx context.Context, fn func(p *state.Panel) error) error
}

type otpVerifier interface {
	Verify(ctx context.Context, address, code string) (domain.VerifyResult, error)
}

type jwtSigner interface {
	Sign(userID, email, role string) (string, error)
}

type service struct {
	panel       panelStore
	otp         otpVerifier
	jwtProvider jwtSigner
	ownerEmail  string
	now         func() time.Time
}

type ServiceDeps struct {
	Panel       panelStore
	OTP         otpVerifier
	JWTProvider jwtSigner
	OwnerEmail  string
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		panel:       deps.Panel,
		otp:         deps.OTP,
		jwtProvider: deps.JWTProvider,
		ownerEmail:  strings.ToLower(deps.OwnerEmail),
		now:         now,
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) isOwner(email string) bool {
	return s.ownerEmail != "" && s.ownerEmail == email
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error) {
	email := normalize(req.Email)
	username := strings.TrimSpace(req.Username)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var profile domain.Profile
	err = s.panel.Update(ctx, func(p *state.Panel) error {
		if p.IsEmailBanned(email) && !s.isOwner(email) {
			return fmt.Errorf("email is banned: %w", domain.ErrForbidden)
		}
		if p.UserByEmail(email) != nil {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		if p.UserByUsername(username) != nil {
			return fmt.Errorf("username already taken: %w", domain.ErrConflict)
		}
		now := s.now().UTC()
		u := domain.User{
			UserID:              id.NewAt(now),
			Username:            username,
			Email:               email,
			PasswordHash:        string(hash),
			HasUnlimitedServers: s.isOwner(email),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		p.Users = append(p.Users, u)
		profile = s.profile(p, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issue(profile)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email := normalize(req.Email)
	var (
		profile domain.Profile
		hash    string
	)
	err := s.panel.View(ctx, func(p *state.Panel) error {
		u := p.UserByEmail(email)
		if u == nil {
			return fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
		}
		if p.IsEmailBanned(email) && !s.isOwner(email) {
			return fmt.Errorf("account is banned: %w", domain.ErrForbidden)
		}
		hash = u.PasswordHash
		profile = s.profile(p, *u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	return s.issue(profile)
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email := normalize(req.Email)
	var known bool
	if err := s.panel.View(ctx, func(p *state.Panel) error {
		known = p.UserByEmail(email) != nil
		return nil
	}); err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("no account for %s: %w", email, domain.ErrNotFound)
	}

	res, err := s.otp.Verify(ctx, email, req.OTP)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %w", res.Message(), domain.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.panel.Update(ctx, func(p *state.Panel) error {
		u := p.UserByEmail(email)
		if u == nil {
			return fmt.Errorf("no account for %s: %w", email, domain.ErrNotFound)
		}
		u.PasswordHash = string(hash)
		u.UpdatedAt = s.now().UTC()
		return nil
	})
}

func (s *service) Me(ctx context.Context, userID string) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.panel.View(ctx, func(p *state.Panel) error {
		for _, u := range p.Users {
			if u.UserID == userID {
				prof := s.profile(p, u)
				out = &prof
				return nil
			}
		}
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	})
	return out, err
}

func (s *service) profile(p *state.Panel, u domain.User) domain.Profile {
	role := domain.RoleUser
	if s.isOwner(u.Email) {
		role = domain.RoleOwner
	}
	owned := p.ServersOwnedBy(u.Email)
	free := 0
	for _, srv := range owned {
		if srv.Plan == domain.FreePlanID {
			free++
		}
	}
	return domain.Profile{
		UserID:              u.UserID,
		Username:            u.Username,
		Email:               u.Email,
		Role:                role,
		HasUnlimitedServers: u.HasUnlimitedServers || role == domain.RoleOwner,
		ServerCount:         len(owned),
		FreeServerCount:     free,
	}
}

func (s *service) issue(profile domain.Profile) (*domain.AuthResult, error) {
	token, err := s.jwtProvider.Sign(profile.UserID, profile.Email, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResult{Token: token, User: profile}, nil
}
