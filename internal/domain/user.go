package domain

import "time"

// Role determines what a user may do. Registration and login live outside
// this service; user rows exist so searches have an owner and the sweep has
// an email address to notify.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the minimal owner record at this service's boundary.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin returns true for administrative users.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
