// Package state holds the panel's users, servers, bans and admin log as a
// handful of JSON blobs in a key-value backend. Every change re-serializes
// the whole panel; the data set is small and this keeps backends trivial.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/thlight-panel/internal/domain"
)

// Blob keys.
const (
	KeyUsers         = "thlight-registered-users"
	KeyServers       = "thlight-servers"
	KeyBannedServers = "thlight-banned-servers"
	KeyBannedEmails  = "thlight-banned-emails"
	KeyAdminActions  = "thlight-admin-actions"
)

// Backend is a minimal blob store. Get returns an error wrapping
// domain.ErrNotFound for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Panel is the decoded state.
type Panel struct {
	Users         []domain.User
	Servers       []domain.Server
	BannedServers []string
	BannedEmails  []string
	Actions       []domain.AdminAction
}

// Store serializes access to the panel blobs.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// View loads the panel and passes it to fn. Changes made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(p *Panel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(p)
}

// Update loads the panel, applies fn and persists the result. Nothing is
// written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(p *Panel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return s.save(ctx, p)
}

func (s *Store) blobs(p *Panel) []struct {
	key string
	ptr any
	n   int
} {
	return []struct {
		key string
		ptr any
		n   int
	}{
		{KeyUsers, &p.Users, len(p.Users)},
		{KeyServers, &p.Servers, len(p.Servers)},
		{KeyBannedServers, &p.BannedServers, len(p.BannedServers)},
		{KeyBannedEmails, &p.BannedEmails, len(p.BannedEmails)},
		{KeyAdminActions, &p.Actions, len(p.Actions)},
	}
}

func (s *Store) load(ctx context.Context) (*Panel, error) {
	p := &Panel{}
	for _, b := range s.blobs(p) {
		raw, err := s.backend.Get(ctx, b.key)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", b.key, err)
		}
		if err := json.Unmarshal(raw, b.ptr); err != nil {
			return nil, fmt.Errorf("decode %s: %w", b.key, err)
		}
	}
	return p, nil
}

// save writes every blob; empty collections are removed instead.
func (s *Store) save(ctx context.Context, p *Panel) error {
	for _, b := range s.blobs(p) {
		if b.n == 0 {
			if err := s.backend.Remove(ctx, b.key); err != nil {
				return fmt.Errorf("remove %s: %w", b.key, err)
			}
			continue
		}
		raw, err := json.Marshal(b.ptr)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.key, err)
		}
		if err := s.backend.Set(ctx, b.key, raw); err != nil {
			return fmt.Errorf("store %s: %w", b.key, err)
		}
	}
	return nil
}

// UserByEmail returns the registered user with email, case-insensitively.
func (p *Panel) UserByEmail(email string) *domain.User {
	for i := range p.Users {
		if strings.EqualFold(p.Users[i].Email, email) {
			return &p.Users[i]
		}
	}
	return nil
}

func (p *Panel) UserByUsername(username string) *domain.User {
	for i := range p.Users {
		if strings.EqualFold(p.Users[i].Username, username) {
			return &p.Users[i]
		}
	}
	return nil
}

// Server returns a pointer into p.Servers, or nil.
func (p *Panel) Server(serverID string) *domain.Server {
	for i := range p.Servers {
		if p.Servers[i].ServerID == serverID {
			return &p.Servers[i]
		}
	}
	return nil
}

// RemoveServer drops the server and any ban on it. It reports whether the
// server existed.
func (p *Panel) RemoveServer(serverID string) bool {
	for i := range p.Servers {
		if p.Servers[i].ServerID == serverID {
			p.Servers = append(p.Servers[:i], p.Servers[i+1:]...)
			p.BannedServers = without(p.BannedServers, serverID)
			return true
		}
	}
	return false
}

func (p *Panel) ServersOwnedBy(email string) []domain.Server {
	var out []domain.Server
	for _, srv := range p.Servers {
		if strings.EqualFold(srv.OwnerEmail, email) {
			out = append(out, srv)
		}
	}
	return out
}

func (p *Panel) IsServerBanned(serverID string) bool {
	return contains(p.BannedServers, serverID)
}

func (p *Panel) IsEmailBanned(email string) bool {
	for _, e := range p.BannedEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// View resolves the ban flag for srv.
func (p *Panel) View(srv domain.Server) domain.ServerView {
	return domain.ServerView{Server: srv, Banned: p.IsServerBanned(srv.ServerID)}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
