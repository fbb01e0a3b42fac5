package models

// Roles carried in verified access tokens.
const (
	RoleUser       = "USER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// Principal is the authenticated caller resolved by the auth middleware.
type Principal struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the caller owns the entity or is an administrator.
func (p Principal) CanManage(ownerID uint) bool {
	return p.IsAdmin() || (p.UserID != 0 && p.UserID == ownerID)
}
