package domain

import "strings"

// AdminRole is the role claim value that grants access to the admin API.
const AdminRole = "admin"

// Principal is the verified identity behind an admin request.
// It only exists in provider-delegated mode; the shared secret carries no
// identity.
type Principal struct {
	UID      string `json:"uid"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Provider string `json:"provider"`
}

// IsAdmin reports whether the role claim is exactly "admin".
func (p Principal) IsAdmin() bool {
	return p.Role == AdminRole
}

// HasEmail reports whether the principal's email matches email,
// ignoring case and surrounding whitespace.
func (p Principal) HasEmail(email string) bool {
	want := strings.TrimSpace(email)
	return want != "" && strings.EqualFold(strings.TrimSpace(p.Email), want)
}
