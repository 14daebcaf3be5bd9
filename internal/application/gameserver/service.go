// Package gameserver manages simulated game servers: creation against the
// plan catalog, power transitions, gameplay settings and player moderation.
package gameserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/infrastructure/state"
	"github.com/thlight-panel/internal/pkg/id"
)

type Service interface {
	Plans() []domain.Plan
	Versions() []string
	Create(ctx context.Context, caller domain.Caller, req domain.CreateServerRequest) (*domain.ServerView, error)
	List(ctx context.Context, caller domain.Caller) ([]domain.ServerView, error)
	Get(ctx context.Context, caller domain.Caller, serverID string) (*domain.ServerView, error)
	Power(ctx context.Context, caller domain.Caller, serverID string, action domain.ServerAction) (*domain.ServerView, error)
	UpdateConfig(ctx context.Context, caller domain.Caller, serverID string, cfg domain.ServerConfig) (*domain.ServerView, error)
	UpdateSpecs(ctx context.Context, caller domain.Caller, serverID string, specs domain.Specs) (*domain.ServerView, error)
	ChangeVersion(ctx context.Context, caller domain.Caller, serverID string, req domain.VersionRequest) (*domain.ServerView, error)
	ListPlayers(ctx context.Context, caller domain.Caller, serverID string) ([]domain.Player, error)
	AddPlayer(ctx context.Context, caller domain.Caller, serverID string, req domain.AddPlayerRequest) (*domain.PlayerActionResult, error)
	ActOnPlayer(ctx context.Context, caller domain.Caller, serverID, playerID string, action domain.PlayerAction) (*domain.PlayerActionResult, error)
}

type panelStore interface {
	View(ctx context.Context, fn func(p *state.Panel) error) error
	Update(ctx context.Context, fn func(p *state.Panel) error) error
}

type service struct {
	panel           panelStore
	freeServerLimit int
	now             func() time.Time
}

type ServiceDeps struct {
	Panel           panelStore
	FreeServerLimit int
	Now             func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{panel: deps.Panel, freeServerLimit: deps.FreeServerLimit, now: now}
}

func (s *service) Plans() []domain.Plan { return domain.Plans() }

func (s *service) Versions() []string { return domain.SupportedVersions() }

func (s *service) Create(ctx context.Context, caller domain.Caller, req domain.CreateServerRequest) (*domain.ServerView, error) {
	plan, ok := domain.LookupPlan(req.Plan)
	if !ok {
		return nil, fmt.Errorf("unknown plan %q: %w", req.Plan, domain.ErrBadRequest)
	}
	var out domain.ServerView
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		if plan.IsFree && !s.unlimited(p, caller) && s.freeCount(p, caller.Email) >= s.freeServerLimit {
			return fmt.Errorf("free server limit of %d reached: %w", s.freeServerLimit, domain.ErrForbidden)
		}
		now := s.now().UTC()
		srv := domain.Server{
			ServerID:    id.NewAt(now),
			Name:        strings.TrimSpace(req.Name),
			Status:      domain.StatusOffline,
			Version:     domain.DefaultServerVersion,
			Software:    domain.SoftwareVanilla,
			Plan:        plan.ID,
			PlanDetails: plan.Specs,
			Country:     req.Country,
			OwnerEmail:  caller.Email,
			Config:      domain.DefaultServerConfig(),
			Players:     []domain.Player{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		p.Servers = append(p.Servers, srv)
		out = p.View(srv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) List(ctx context.Context, caller domain.Caller) ([]domain.ServerView, error) {
	now := s.now()
	out := []domain.ServerView{}
	err := s.panel.View(ctx, func(p *state.Panel) error {
		for _, srv := range p.ServersOwnedBy(caller.Email) {
			settle(&srv, now)
			out = append(out, p.View(srv))
		}
		return nil
	})
	return out, err
}

func (s *service) Get(ctx context.Context, caller domain.Caller, serverID string) (*domain.ServerView, error) {
	var out domain.ServerView
	err := s.panel.View(ctx, func(p *state.Panel) error {
		srv, err := s.lookup(p, caller, serverID)
		if err != nil {
			return err
		}
		cp := *srv
		settle(&cp, s.now())
		out = p.View(cp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Power(ctx context.Context, caller domain.Caller, serverID string, action domain.ServerAction) (*domain.ServerView, error) {
	return s.mutate(ctx, caller, serverID, func(srv *domain.Server, now time.Time) error {
		return power(srv, action, now)
	})
}

func (s *service) UpdateConfig(ctx context.Context, caller domain.Caller, serverID string, cfg domain.ServerConfig) (*domain.ServerView, error) {
	return s.mutate(ctx, caller, serverID, func(srv *domain.Server, _ time.Time) error {
		srv.Config = cfg
		return nil
	})
}

func (s *service) UpdateSpecs(ctx context.Context, caller domain.Caller, serverID string, specs domain.Specs) (*domain.ServerView, error) {
	return s.mutate(ctx, caller, serverID, func(srv *domain.Server, _ time.Time) error {
		if !specs.Fits(srv.PlanDetails) {
			return fmt.Errorf("specs exceed the %s plan limits: %w", srv.Plan, domain.ErrBadRequest)
		}
		srv.AllocatedSpecs = &specs
		return nil
	})
}

func (s *service) ChangeVersion(ctx context.Context, caller domain.Caller, serverID string, req domain.VersionRequest) (*domain.ServerView, error) {
	if !domain.IsSupportedVersion(req.Version) {
		return nil, fmt.Errorf("unsupported version %q: %w", req.Version, domain.ErrBadRequest)
	}
	software := req.Type
	if software == "" {
		software = domain.SoftwareVanilla
	}
	return s.mutate(ctx, caller, serverID, func(srv *domain.Server, _ time.Time) error {
		srv.Version = req.Version
		srv.Software = software
		return nil
	})
}

func (s *service) ListPlayers(ctx context.Context, caller domain.Caller, serverID string) ([]domain.Player, error) {
	view, err := s.Get(ctx, caller, serverID)
	if err != nil {
		return nil, err
	}
	if view.Players == nil {
		return []domain.Player{}, nil
	}
	return view.Players, nil
}

func (s *service) AddPlayer(ctx context.Context, caller domain.Caller, serverID string, req domain.AddPlayerRequest) (*domain.PlayerActionResult, error) {
	var res domain.PlayerActionResult
	_, err := s.mutate(ctx, caller, serverID, func(srv *domain.Server, now time.Time) error {
		for _, pl := range srv.Players {
			if strings.EqualFold(pl.Username, req.Username) {
				return fmt.Errorf("player %s already exists: %w", req.Username, domain.ErrConflict)
			}
		}
		pl := domain.Player{
			PlayerID:      id.NewAt(now),
			Username:      req.Username,
			Role:          domain.PlayerRolePlayer,
			IsWhitelisted: req.Action == "whitelist" || req.Action == "op",
			IsBanned:      req.Action == "ban",
		}
		if req.Action == "op" {
			pl.Role = domain.PlayerRoleOp
		}
		srv.Players = append(srv.Players, pl)
		res = domain.PlayerActionResult{Player: pl, Message: addedMessage(req.Username, req.Action)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) ActOnPlayer(ctx context.Context, caller domain.Caller, serverID, playerID string, action domain.PlayerAction) (*domain.PlayerActionResult, error) {
	var res domain.PlayerActionResult
	_, err := s.mutate(ctx, caller, serverID, func(srv *domain.Server, _ time.Time) error {
		for i := range srv.Players {
			if srv.Players[i].PlayerID != playerID {
				continue
			}
			msg, err := applyPlayerAction(&srv.Players[i], action)
			if err != nil {
				return err
			}
			res = domain.PlayerActionResult{Player: srv.Players[i], Message: msg}
			return nil
		}
		return fmt.Errorf("player not found: %w", domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// mutate settles the server, rejects banned servers, applies fn and persists.
func (s *service) mutate(ctx context.Context, caller domain.Caller, serverID string, fn func(srv *domain.Server, now time.Time) error) (*domain.ServerView, error) {
	var out domain.ServerView
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		srv, err := s.lookup(p, caller, serverID)
		if err != nil {
			return err
		}
		if p.IsServerBanned(srv.ServerID) {
			return fmt.Errorf("server is banned: %w", domain.ErrForbidden)
		}
		now := s.now().UTC()
		settle(srv, now)
		if err := fn(srv, now); err != nil {
			return err
		}
		srv.CurrentPlayers = countOnline(srv.Players)
		srv.UpdatedAt = now
		out = p.View(*srv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// lookup finds a server the caller may manage. Other users' servers are
// reported as missing.
func (s *service) lookup(p *state.Panel, caller domain.Caller, serverID string) (*domain.Server, error) {
	srv := p.Server(serverID)
	if srv == nil || (!caller.IsOwner() && !strings.EqualFold(srv.OwnerEmail, caller.Email)) {
		return nil, fmt.Errorf("server not found: %w", domain.ErrNotFound)
	}
	return srv, nil
}

func (s *service) unlimited(p *state.Panel, caller domain.Caller) bool {
	if caller.IsOwner() {
		return true
	}
	u := p.UserByEmail(caller.Email)
	return u != nil && u.HasUnlimitedServers
}

func (s *service) freeCount(p *state.Panel, email string) int {
	n := 0
	for _, srv := range p.ServersOwnedBy(email) {
		if srv.Plan == domain.FreePlanID {
			n++
		}
	}
	return n
}
