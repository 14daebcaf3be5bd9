package gameserver

import (
	"fmt"

	"github.com/thlight-panel/internal/domain"
)

// applyPlayerAction mutates p and returns the outcome message.
func applyPlayerAction(p *domain.Player, action domain.PlayerAction) (string, error) {
	switch action {
	case domain.PlayerBan:
		p.IsBanned = true
		p.Online = false
	case domain.PlayerUnban:
		p.IsBanned = false
	case domain.PlayerOp:
		p.Role = domain.PlayerRoleOp
		p.IsWhitelisted = true
	case domain.PlayerDeop:
		p.Role = domain.PlayerRolePlayer
	case domain.PlayerWhitelist:
		p.IsWhitelisted = true
	case domain.PlayerUnwhitelist:
		p.IsWhitelisted = false
	case domain.PlayerKick:
		p.Online = false
	case domain.PlayerKill:
		return p.Username + " was killed!", nil
	case domain.PlayerClearInventory:
		return p.Username + "'s inventory cleared!", nil
	default:
		return "", fmt.Errorf("unknown player action %q: %w", action, domain.ErrBadRequest)
	}
	return fmt.Sprintf("%s %s action completed!", p.Username, action), nil
}

func addedMessage(username, action string) string {
	switch action {
	case "op":
		return "Player " + username + " added as OP successfully!"
	case "whitelist":
		return "Player " + username + " added to whitelist successfully!"
	case "ban":
		return "Player " + username + " banned successfully!"
	default:
		return "Player " + username + " added successfully!"
	}
}

func countOnline(players []domain.Player) int {
	n := 0
	for _, p := range players {
		if p.Online && !p.IsBanned {
			n++
		}
	}
	return n
}
