package domain

import "time"

type AdminActionType string

const (
	ActionServerDelete  AdminActionType = "server_delete"
	ActionServerBan     AdminActionType = "server_ban"
	ActionServerUnban   AdminActionType = "server_unban"
	ActionEmailBan      AdminActionType = "email_ban"
	ActionEmailUnban    AdminActionType = "email_unban"
	ActionPremiumGrant  AdminActionType = "premium_grant"
	ActionPremiumRevoke AdminActionType = "premium_revoke"
)

type AdminAction struct {
	ActionID   string          `json:"id"`
	Type       AdminActionType `json:"type"`
	Target     string          `json:"target"`
	AdminEmail string          `json:"admin_email"`
	CreatedAt  time.Time       `json:"timestamp"`
}

type BanEmailRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
}

type GrantRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
	Plan  string `json:"plan" validate:"required"`
}

// AdminOverview is the owner's panel snapshot.
type AdminOverview struct {
	Servers       []Server `json:"servers"`
	OwnerEmails   []string `json:"owner_emails"`
	BannedServers []string `json:"banned_servers"`
	BannedEmails  []string `json:"banned_emails"`
	TotalUsers    int      `json:"total_users"`
}

// AdminResult reports the outcome of an admin action.
type AdminResult struct {
	Message string      `json:"message"`
	Action  AdminAction `json:"action"`
	Server  *ServerView `json:"server,omitempty"`
}
