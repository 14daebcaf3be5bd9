package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/infrastructure/state"
	"github.com/thlight-panel/internal/pkg/id"
)

// actionLogLimit bounds the admin action log.
const actionLogLimit = 50

const grantCountry = "United States"

type Service interface {
	Overview(ctx context.Context) (*domain.AdminOverview, error)
	Actions(ctx context.Context) ([]domain.AdminAction, error)
	DeleteServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error)
	BanServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error)
	UnbanServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error)
	BanEmail(ctx context.Context, caller domain.Caller, email string) (*domain.AdminResult, error)
	UnbanEmail(ctx context.Context, caller domain.Caller, email string) (*domain.AdminResult, error)
	Grant(ctx context.Context, caller domain.Caller, req domain.GrantRequest) (*domain.AdminResult, error)
	Revoke(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error)
}

type panelStore interface {
	View(ctx context.Context, fn func(p *state.Panel) error) error
	Update(ctx context.Context, fn func(p *state.Panel) error) error
}

type service struct {
	panel      panelStore
	ownerEmail string
	now        func() time.Time
}

type ServiceDeps struct {
	Panel      panelStore
	OwnerEmail string
	Now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{panel: deps.Panel, ownerEmail: strings.ToLower(deps.OwnerEmail), now: now}
}

func (s *service) Overview(ctx context.Context) (*domain.AdminOverview, error) {
	var out domain.AdminOverview
	err := s.panel.View(ctx, func(p *state.Panel) error {
		seen := map[string]bool{}
		emails := []string{}
		for _, srv := range p.Servers {
			if srv.OwnerEmail != "" && !seen[srv.OwnerEmail] {
				seen[srv.OwnerEmail] = true
				emails = append(emails, srv.OwnerEmail)
			}
		}
		sort.Strings(emails)
		out = domain.AdminOverview{
			Servers:       append([]domain.Server{}, p.Servers...),
			OwnerEmails:   emails,
			BannedServers: append([]string{}, p.BannedServers...),
			BannedEmails:  append([]string{}, p.BannedEmails...),
			TotalUsers:    len(p.Users),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Actions(ctx context.Context) ([]domain.AdminAction, error) {
	out := []domain.AdminAction{}
	err := s.panel.View(ctx, func(p *state.Panel) error {
		out = append(out, p.Actions...)
		return nil
	})
	return out, err
}

func (s *service) DeleteServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error) {
	return s.removeServer(ctx, caller, serverID, domain.ActionServerDelete, func(srv domain.Server) (string, string) {
		return fmt.Sprintf("%s (%s)", srv.Name, srv.OwnerEmail),
			fmt.Sprintf("Server %q deleted successfully", srv.Name)
	})
}

func (s *service) Revoke(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error) {
	return s.removeServer(ctx, caller, serverID, domain.ActionPremiumRevoke, func(srv domain.Server) (string, string) {
		return fmt.Sprintf("%s from %s", srv.Name, srv.OwnerEmail),
			fmt.Sprintf("Server %q revoked from %s", srv.Name, srv.OwnerEmail)
	})
}

func (s *service) BanServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error) {
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		srv := p.Server(serverID)
		if srv == nil {
			return fmt.Errorf("server not found: %w", domain.ErrNotFound)
		}
		if p.IsServerBanned(serverID) {
			return fmt.Errorf("server already banned: %w", domain.ErrConflict)
		}
		p.BannedServers = append(p.BannedServers, serverID)
		view := p.View(*srv)
		res = domain.AdminResult{
			Message: fmt.Sprintf("Server %q banned successfully", srv.Name),
			Action:  s.log(p, caller, domain.ActionServerBan, fmt.Sprintf("%s (%s)", srv.Name, srv.OwnerEmail)),
			Server:  &view,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) UnbanServer(ctx context.Context, caller domain.Caller, serverID string) (*domain.AdminResult, error) {
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		srv := p.Server(serverID)
		if srv == nil {
			return fmt.Errorf("server not found: %w", domain.ErrNotFound)
		}
		if !p.IsServerBanned(serverID) {
			return fmt.Errorf("server is not banned: %w", domain.ErrConflict)
		}
		p.BannedServers = remove(p.BannedServers, serverID)
		view := p.View(*srv)
		res = domain.AdminResult{
			Message: fmt.Sprintf("Server %q unbanned successfully", srv.Name),
			Action:  s.log(p, caller, domain.ActionServerUnban, fmt.Sprintf("%s (%s)", srv.Name, srv.OwnerEmail)),
			Server:  &view,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) BanEmail(ctx context.Context, caller domain.Caller, email string) (*domain.AdminResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == s.ownerEmail {
		return nil, fmt.Errorf("the owner account cannot be banned: %w", domain.ErrBadRequest)
	}
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		if p.IsEmailBanned(email) {
			return fmt.Errorf("email already banned: %w", domain.ErrConflict)
		}
		p.BannedEmails = append(p.BannedEmails, email)
		res = domain.AdminResult{
			Message: fmt.Sprintf("Email %q banned successfully", email),
			Action:  s.log(p, caller, domain.ActionEmailBan, email),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) UnbanEmail(ctx context.Context, caller domain.Caller, email string) (*domain.AdminResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		if !p.IsEmailBanned(email) {
			return fmt.Errorf("email is not banned: %w", domain.ErrConflict)
		}
		out := p.BannedEmails[:0]
		for _, e := range p.BannedEmails {
			if !strings.EqualFold(e, email) {
				out = append(out, e)
			}
		}
		p.BannedEmails = out
		res = domain.AdminResult{
			Message: fmt.Sprintf("Email %q unbanned successfully", email),
			Action:  s.log(p, caller, domain.ActionEmailUnban, email),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Grant creates a server on plan for email without counting against any limit.
func (s *service) Grant(ctx context.Context, caller domain.Caller, req domain.GrantRequest) (*domain.AdminResult, error) {
	plan, ok := domain.LookupPlan(req.Plan)
	if !ok {
		return nil, fmt.Errorf("unknown plan %q: %w", req.Plan, domain.ErrBadRequest)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		now := s.now().UTC()
		srv := domain.Server{
			ServerID:    id.NewAt(now),
			Name:        fmt.Sprintf("Premium %s Server", plan.Name),
			Status:      domain.StatusOffline,
			Version:     domain.DefaultServerVersion,
			Software:    domain.SoftwareVanilla,
			Plan:        plan.ID,
			PlanDetails: plan.Specs,
			Country:     grantCountry,
			OwnerEmail:  email,
			Config:      domain.DefaultServerConfig(),
			Players:     []domain.Player{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		p.Servers = append(p.Servers, srv)
		view := p.View(srv)
		res = domain.AdminResult{
			Message: fmt.Sprintf("%s server granted to %s", plan.Name, email),
			Action:  s.log(p, caller, domain.ActionPremiumGrant, fmt.Sprintf("%s server to %s", plan.Name, email)),
			Server:  &view,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *service) removeServer(ctx context.Context, caller domain.Caller, serverID string, typ domain.AdminActionType, describe func(domain.Server) (target, message string)) (*domain.AdminResult, error) {
	var res domain.AdminResult
	err := s.panel.Update(ctx, func(p *state.Panel) error {
		srv := p.Server(serverID)
		if srv == nil {
			return fmt.Errorf("server not found: %w", domain.ErrNotFound)
		}
		target, msg := describe(*srv)
		p.RemoveServer(serverID)
		res = domain.AdminResult{Message: msg, Action: s.log(p, caller, typ, target)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// log prepends an entry to the action log, keeping the newest actionLogLimit.
func (s *service) log(p *state.Panel, caller domain.Caller, typ domain.AdminActionType, target string) domain.AdminAction {
	now := s.now().UTC()
	a := domain.AdminAction{
		ActionID:   id.NewAt(now),
		Type:       typ,
		Target:     target,
		AdminEmail: caller.Email,
		CreatedAt:  now,
	}
	p.Actions = append([]domain.AdminAction{a}, p.Actions...)
	if len(p.Actions) > actionLogLimit {
		p.Actions = p.Actions[:actionLogLimit]
	}
	return a
}

func remove(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
