package domain

// Role distinguishes privileged administrators from ordinary requesters.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the already-authenticated caller handed to every core
// operation. The core never issues or validates credentials itself; it
// trusts what the authentication collaborator resolved for this call.
type Identity struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
