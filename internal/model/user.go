package model

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an administrative account. Voters are not users.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Claims is the authenticated identity carried by a request.
type Claims struct {
	UserID   int64
	Username string
	Role     string
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// LoginRequest is the API request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
