package repository

import (
	"context"
	"fmt"
	"time"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

type NetworkRepository struct {
	db DBTX
}

func NewNetworkRepository(db DBTX) *NetworkRepository {
	return &NetworkRepository{db: db}
}

// FindByUser returns empty links when the user never saved any.
func (r *NetworkRepository) FindByUser(ctx context.Context, userID string) (model.NetworkURLs, error) {
	var n model.NetworkURLs
	err := r.db.QueryRow(ctx,
		`SELECT website, github, facebook, instagram, linkedin
		 FROM network_urls WHERE user_id = $1`, userID).
		Scan(&n.Website, &n.GitHub, &n.Facebook, &n.Instagram, &n.LinkedIn)
	if isMissing(err) {
		return model.NetworkURLs{}, nil
	}
	if err != nil {
		return model.NetworkURLs{}, fmt.Errorf("find network urls: %w", err)
	}
	return n, nil
}

func (r *NetworkRepository) Upsert(ctx context.Context, userID string, n model.NetworkURLs, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO network_urls (user_id, website, github, facebook, instagram, linkedin, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     website = EXCLUDED.website, github = EXCLUDED.github, facebook = EXCLUDED.facebook,
		     instagram = EXCLUDED.instagram, linkedin = EXCLUDED.linkedin, updated_at = EXCLUDED.updated_at`,
		userID, n.Website, n.GitHub, n.Facebook, n.Instagram, n.LinkedIn, now)
	if isForeignKeyViolation(err) || isMissing(err) {
		return apierror.NotFound("user", userID)
	}
	if err != nil {
		return fmt.Errorf("upsert network urls: %w", err)
	}
	return nil
}
