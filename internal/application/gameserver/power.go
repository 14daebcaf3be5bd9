package gameserver

import (
	"fmt"
	"time"

	"github.com/thlight-panel/internal/domain"
)

// Simulated boot and shutdown durations.
const (
	startDelay = 3 * time.Second
	stopDelay  = 2 * time.Second
)

// settle applies every transition due at now. Reaching "starting" always
// schedules "online" startDelay later, which chains restart's two phases.
func settle(srv *domain.Server, now time.Time) {
	for srv.TransitionAt != nil && !now.Before(*srv.TransitionAt) {
		at := *srv.TransitionAt
		srv.Status = srv.NextStatus
		srv.NextStatus = ""
		srv.TransitionAt = nil
		switch srv.Status {
		case domain.StatusStarting:
			schedule(srv, domain.StatusOnline, at.Add(startDelay))
		case domain.StatusOffline:
			for i := range srv.Players {
				srv.Players[i].Online = false
			}
			srv.CurrentPlayers = 0
		}
	}
}

func schedule(srv *domain.Server, next domain.ServerStatus, at time.Time) {
	srv.NextStatus = next
	srv.TransitionAt = &at
}

func busy(srv *domain.Server) bool {
	return srv.TransitionAt != nil
}

// power begins the transition for action. srv must already be settled.
func power(srv *domain.Server, action domain.ServerAction, now time.Time) error {
	if busy(srv) {
		return fmt.Errorf("server is %s: %w", srv.Status, domain.ErrConflict)
	}
	switch action {
	case domain.ServerStart:
		if srv.Status == domain.StatusOnline {
			return fmt.Errorf("server is already online: %w", domain.ErrConflict)
		}
		srv.Status = domain.StatusStarting
		schedule(srv, domain.StatusOnline, now.Add(startDelay))
	case domain.ServerStop:
		if srv.Status == domain.StatusOffline {
			return fmt.Errorf("server is already offline: %w", domain.ErrConflict)
		}
		srv.Status = domain.StatusStopping
		schedule(srv, domain.StatusOffline, now.Add(stopDelay))
	case domain.ServerRestart:
		srv.Status = domain.StatusStopping
		schedule(srv, domain.StatusStarting, now.Add(stopDelay))
	default:
		return fmt.Errorf("unknown action %q: %w", action, domain.ErrBadRequest)
	}
	return nil
}
