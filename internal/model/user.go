package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func ParseRole(raw string) Role {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return RoleUser
	}
	return role
}

// Identity is a local account. ProfileImage is the URL of the user-profile
// MediaSlot when one exists and is empty otherwise.
type Identity struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Name         string      `json:"name"`
	UserName     string      `json:"user_name"`
	Biography    string      `json:"biography"`
	Location     string      `json:"location"`
	Role         Role        `json:"role"`
	ProfileImage string      `json:"profile_image"`
	Network      NetworkURLs `json:"network"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type PublicProfile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	UserName     string        `json:"user_name"`
	Biography    string        `json:"biography"`
	Location     string        `json:"location"`
	ProfileImage string        `json:"profile_image"`
	Network      NetworkURLs   `json:"network"`
	CreatedAt    time.Time     `json:"created_at"`
	Posts        []PostSummary `json:"posts"`
}

// NetworkURLs are the social links shown on a profile. A user without a
// stored row has all fields empty.
type NetworkURLs struct {
	Website   string `json:"website"`
	GitHub    string `json:"github"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// NetworkPatch merges into the stored NetworkURLs; nil fields keep their value.
type NetworkPatch struct {
	Website   *string
	GitHub    *string
	Facebook  *string
	Instagram *string
	LinkedIn  *string
}

func (p NetworkPatch) Empty() bool {
	return p.Website == nil && p.GitHub == nil && p.Facebook == nil && p.Instagram == nil && p.LinkedIn == nil
}

func (p NetworkPatch) Apply(current NetworkURLs) NetworkURLs {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&current.Website, p.Website)
	set(&current.GitHub, p.GitHub)
	set(&current.Facebook, p.Facebook)
	set(&current.Instagram, p.Instagram)
	set(&current.LinkedIn, p.LinkedIn)
	return current
}

type UserStats struct {
	Posts            int `json:"posts"`
	PublicPosts      int `json:"public_posts"`
	ClapsReceived    int `json:"claps_received"`
	CommentsReceived int `json:"comments_received"`
}

// IdentityPatch carries self-service profile changes. Nil fields are left
// untouched. Role is deliberately absent.
type IdentityPatch struct {
	Name         *string
	UserName     *string
	Biography    *string
	Location     *string
	PasswordHash *string
	ProfileImage DesiredMedia
	Network      NetworkPatch
}

func (p IdentityPatch) HasColumns() bool {
	return p.Name != nil || p.UserName != nil || p.Biography != nil || p.Location != nil || p.PasswordHash != nil
}
