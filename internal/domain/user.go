package domain

import "time"

const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

type User struct {
	UserID              string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"password_hash,omitempty"`
	HasUnlimitedServers bool      `json:"has_unlimited_servers"`
	CreatedAt           time.Time `json:"created"`
	UpdatedAt           time.Time `json:"updated"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,contains=@"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// Profile is the public view of a user plus server counters.
type Profile struct {
	UserID              string `json:"id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	HasUnlimitedServers bool   `json:"has_unlimited_servers"`
	ServerCount         int    `json:"server_count"`
	FreeServerCount     int    `json:"free_server_count"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Caller identifies the authenticated user behind a request.
type Caller struct {
	UserID string
	Email  string
	Role   string
}

func (c Caller) IsOwner() bool { return c.Role == RoleOwner }
