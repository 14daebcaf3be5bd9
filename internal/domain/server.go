package domain

import "time"

type ServerStatus string

const (
	StatusOnline   ServerStatus = "online"
	StatusOffline  ServerStatus = "offline"
	StatusStarting ServerStatus = "starting"
	StatusStopping ServerStatus = "stopping"
)

// ServerConfig mirrors server.properties-style gameplay settings.
type ServerConfig struct {
	Slots         int    `json:"slots" validate:"min=1,max=1000"`
	Gamemode      string `json:"gamemode" validate:"oneof=Survival Creative Adventure Spectator"`
	Difficulty    string `json:"difficulty" validate:"oneof=Peaceful Easy Normal Hard"`
	Whitelist     bool   `json:"whitelist"`
	PVP           bool   `json:"pvp"`
	Cracked       bool   `json:"cracked"`
	CommandBlocks bool   `json:"commandblocks"`
	Monster       bool   `json:"monster"`
	Fly           bool   `json:"fly"`
	Nether        bool   `json:"nether"`
}

// DefaultServerConfig is applied to every newly created server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Slots:         20,
		Gamemode:      "Survival",
		Difficulty:    "Normal",
		PVP:           true,
		CommandBlocks: true,
		Monster:       true,
		Fly:           true,
		Nether:        true,
	}
}

const DefaultServerVersion = "1.21.4"

// Server software flavours.
const (
	SoftwareVanilla = "vanilla"
	SoftwareBukkit  = "bukkit"
)

var supportedVersions = []string{
	"1.21.4", "1.21.3", "1.21.2", "1.21.1", "1.21.0",
	"1.20.6", "1.20.4", "1.20.2", "1.20.1",
	"1.19.4", "1.19.2", "1.18.2", "1.17.1", "1.16.5",
	"1.12.2", "1.8.9",
}

// SupportedVersions lists installable game versions, newest first.
func SupportedVersions() []string {
	return append([]string(nil), supportedVersions...)
}

func IsSupportedVersion(v string) bool {
	for _, s := range supportedVersions {
		if s == v {
			return true
		}
	}
	return false
}

type Server struct {
	ServerID       string       `json:"id"`
	Name           string       `json:"name"`
	Status         ServerStatus `json:"status"`
	Version        string       `json:"version"`
	Software       string       `json:"software"`
	Plan           string       `json:"plan"`
	PlanDetails    Specs        `json:"plan_details"`
	AllocatedSpecs *Specs       `json:"allocated_specs,omitempty"`
	Country        string       `json:"country"`
	OwnerEmail     string       `json:"owner_email"`
	CurrentPlayers int          `json:"current_players"`
	Config         ServerConfig `json:"server_config"`
	Players        []Player     `json:"players"`
	// Pending transition; Status flips to NextStatus once TransitionAt passes.
	NextStatus   ServerStatus `json:"next_status,omitempty"`
	TransitionAt *time.Time   `json:"transition_at,omitempty"`
	CreatedAt    time.Time    `json:"created"`
	UpdatedAt    time.Time    `json:"updated"`
}

// ServerView is a server as returned to clients, with its ban flag resolved.
type ServerView struct {
	Server
	Banned bool `json:"banned"`
}

type CreateServerRequest struct {
	Name    string `json:"name" validate:"required,max=64"`
	Plan    string `json:"plan" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type VersionRequest struct {
	Version string `json:"version" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=vanilla bukkit"`
}

// ServerAction is a console power action.
type ServerAction string

const (
	ServerStart   ServerAction = "start"
	ServerStop    ServerAction = "stop"
	ServerRestart ServerAction = "restart"
)

type PlayerRole string

const (
	PlayerRolePlayer PlayerRole = "player"
	PlayerRoleOp     PlayerRole = "op"
)

type Player struct {
	PlayerID      string     `json:"id"`
	Username      string     `json:"username"`
	Online        bool       `json:"online"`
	Role          PlayerRole `json:"role"`
	IsWhitelisted bool       `json:"is_whitelisted"`
	IsBanned      bool       `json:"is_banned"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
}

// PlayerAction is a moderation action applied to a known player.
type PlayerAction string

const (
	PlayerBan            PlayerAction = "ban"
	PlayerUnban          PlayerAction = "unban"
	PlayerOp             PlayerAction = "op"
	PlayerDeop           PlayerAction = "deop"
	PlayerWhitelist      PlayerAction = "whitelist"
	PlayerUnwhitelist    PlayerAction = "unwhitelist"
	PlayerKick           PlayerAction = "kick"
	PlayerKill           PlayerAction = "kill"
	PlayerClearInventory PlayerAction = "clear-inventory"
)

// PlayerActionResult echoes the affected player and a human-readable outcome.
type PlayerActionResult struct {
	Player  Player `json:"player"`
	Message string `json:"message"`
}

type AddPlayerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=16"`
	Action   string `json:"action" validate:"omitempty,oneof=op whitelist ban"`
}
