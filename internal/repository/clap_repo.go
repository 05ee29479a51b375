package repository

import (
	"context"
	"fmt"
	"time"

	"community-api/pkg/apierror"
)

type ClapRepository struct {
	db DBTX
}

func NewClapRepository(db DBTX) *ClapRepository {
	return &ClapRepository{db: db}
}

// Add records one clap per user and post.
func (r *ClapRepository) Add(ctx context.Context, postID, userID string, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO claps (post_id, user_id, created_at) VALUES ($1, $2, $3)`,
		postID, userID, now)
	if isUniqueViolation(err) {
		return apierror.Conflict("clap already added", postID)
	}
	if isForeignKeyViolation(err) || isMissing(err) {
		return apierror.NotFound("post", postID)
	}
	if err != nil {
		return fmt.Errorf("add clap: %w", err)
	}
	return nil
}

func (r *ClapRepository) Remove(ctx context.Context, postID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM claps WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if isMissing(err) {
		return apierror.NotFound("clap", postID)
	}
	if err != nil {
		return fmt.Errorf("remove clap: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("clap", postID)
	}
	return nil
}
