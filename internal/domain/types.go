package domain

// Role is the access level carried by an authenticated caller.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (r RequestContext) IsAdmin() bool {
	return r.Role == RoleAdmin
}
