package model

import "time"

const (
	ClaimAdmin = "admin"
	ClaimRole  = "role"

	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// DefaultPermissions are granted to every provisioned admin profile.
var DefaultPermissions = []string{"view_leads", "edit_leads", "delete_leads", "manage_users"}

// Account is an entry of the authentication directory.
type Account struct {
	UID           string         `json:"uid"`
	Email         string         `json:"email"`
	DisplayName   string         `json:"display_name"`
	EmailVerified bool           `json:"email_verified"`
	Disabled      bool           `json:"disabled"`
	Claims        map[string]any `json:"claims,omitempty"`
}

// IsAdmin reports whether the admin claim is present and true.
func (a Account) IsAdmin() bool {
	return HasAdminClaim(a.Claims)
}

// Role returns the role claim, empty when absent.
func (a Account) Role() string {
	s, _ := a.Claims[ClaimRole].(string)
	return s
}

func HasAdminClaim(claims map[string]any) bool {
	v, ok := claims[ClaimAdmin].(bool)
	return ok && v
}

// AdminClaims builds the claim set assigned to admin accounts.
func AdminClaims(role string) map[string]any {
	return map[string]any{
		ClaimAdmin: true,
		ClaimRole:  role,
	}
}

// NewAccount carries the fields used when creating a directory entry.
type NewAccount struct {
	Email         string
	Password      string
	DisplayName   string
	EmailVerified bool
}

// AdminProfile is the denormalised users/{uid} document.
type AdminProfile struct {
	UID         string    `firestore:"uid"`
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Role        string    `firestore:"role"`
	Permissions []string  `firestore:"permissions"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	LastLogin   time.Time `firestore:"lastLogin,serverTimestamp"`
}
