package service

import (
	"context"
	"time"

	"community-api/internal/model"
	"community-api/internal/repository"
)

// IdentityFinder is the read side of the identity store used by sessions and
// the delegated identity bridge.
type IdentityFinder interface {
	FindByID(ctx context.Context, id string) (model.Identity, error)
	FindByEmail(ctx context.Context, email string) (model.Identity, error)
}

type IdentityStore interface {
	IdentityFinder
	Create(ctx context.Context, u model.Identity) error
	Update(ctx context.Context, id string, patch model.IdentityPatch, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type MediaStore interface {
	FindByOwner(ctx context.Context, ownerID string, kind model.OwnerKind) (model.MediaSlot, error)
	Upsert(ctx context.Context, slot model.MediaSlot) error
	DeleteByOwner(ctx context.Context, ownerID string, kind model.OwnerKind) error
	ListOwnedByUser(ctx context.Context, userID string) ([]model.MediaSlot, error)
}

type PostStore interface {
	Create(ctx context.Context, p model.Post) error
	FindByID(ctx context.Context, id string) (model.Post, error)
	Update(ctx context.Context, id string, cols repository.PostColumns, now time.Time) error
	Delete(ctx context.Context, id string) error
	FindBySlug(ctx context.Context, slug string) (model.Post, error)
	ListPublicByUser(ctx context.Context, userID string) ([]model.PostSummary, error)
	ListByUser(ctx context.Context, userID string) ([]model.PostSummary, error)
	ListPublic(ctx context.Context, limit int) ([]model.PostSummary, error)
	StatsForUser(ctx context.Context, userID string) (model.UserStats, error)
}

type NetworkStore interface {
	FindByUser(ctx context.Context, userID string) (model.NetworkURLs, error)
	Upsert(ctx context.Context, userID string, n model.NetworkURLs, now time.Time) error
}

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) error
	FindByID(ctx context.Context, id string) (model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	Update(ctx context.Context, id string, patch model.CommentPatch, now time.Time) error
	Delete(ctx context.Context, id string) error
}

type ClapStore interface {
	Add(ctx context.Context, postID, userID string, now time.Time) error
	Remove(ctx context.Context, postID, userID string) error
}

// Reconciler converges one owner's media slot to a desired value.
type Reconciler interface {
	Reconcile(ctx context.Context, ownerID string, kind model.OwnerKind, desired model.DesiredMedia) error
}

// IdentityProvider authenticates a user against a third party and returns
// the profile it vouches for.
type IdentityProvider interface {
	Name() string
	Authenticate(ctx context.Context, code string) (model.DelegatedProfile, error)
}
