package model

import "time"

// Principal is the {id, role} pair carried by both token classes.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SessionProfile is the body returned by sign-in, revalidate and the OAuth
// callback.
type SessionProfile struct {
	ID           string `json:"id"`
	Token        string `json:"token"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}

// Session is the outcome of a successful login. RefreshToken only ever
// travels in the refresh cookie.
type Session struct {
	Profile          SessionProfile
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// DelegatedProfile is what an identity provider tells us about its user. It
// is only used to locate an existing Identity and is never stored.
type DelegatedProfile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}
