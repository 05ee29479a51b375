package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

// MediaRepository stores MediaSlots, one row per (owner_id, owner_kind).
type MediaRepository struct {
	db DBTX
}

func NewMediaRepository(db DBTX) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) FindByOwner(ctx context.Context, ownerID string, kind model.OwnerKind) (model.MediaSlot, error) {
	var slot model.MediaSlot
	err := r.db.QueryRow(ctx,
		`SELECT public_id, url, owner_id::text, updated_at
		 FROM media_slots WHERE owner_id = $1 AND owner_kind = $2`,
		ownerID, string(kind)).
		Scan(&slot.PublicID, &slot.URL, &slot.OwnerID, &slot.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.MediaSlot{}, apierror.NotFound("media slot", ownerID)
	}
	if err != nil {
		return model.MediaSlot{}, fmt.Errorf("find media slot: %w", err)
	}
	slot.OwnerKind = kind
	return slot, nil
}

// Upsert writes slot keyed by owner. Concurrent writers for the same owner
// resolve last-write-wins.
func (r *MediaRepository) Upsert(ctx context.Context, slot model.MediaSlot) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO media_slots (owner_id, owner_kind, public_id, url, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id, owner_kind)
		 DO UPDATE SET public_id = EXCLUDED.public_id, url = EXCLUDED.url, updated_at = EXCLUDED.updated_at`,
		slot.OwnerID, string(slot.OwnerKind), slot.PublicID, slot.URL, slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert media slot: %w", err)
	}
	return nil
}

func (r *MediaRepository) DeleteByOwner(ctx context.Context, ownerID string, kind model.OwnerKind) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM media_slots WHERE owner_id = $1 AND owner_kind = $2`,
		ownerID, string(kind))
	if err != nil {
		return fmt.Errorf("delete media slot: %w", err)
	}
	return nil
}

// ListOwnedByUser returns the user's profile slot and the cover slots of all
// of the user's posts.
func (r *MediaRepository) ListOwnedByUser(ctx context.Context, userID string) ([]model.MediaSlot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT public_id, url, owner_id::text, owner_kind, updated_at
		 FROM media_slots
		 WHERE (owner_kind = 'user-profile' AND owner_id = $1)
		    OR (owner_kind = 'post-cover' AND owner_id IN (SELECT id FROM posts WHERE user_id = $1))
		 ORDER BY owner_kind, owner_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list media slots: %w", err)
	}
	defer rows.Close()

	slots := make([]model.MediaSlot, 0)
	for rows.Next() {
		var slot model.MediaSlot
		var kind string
		if err := rows.Scan(&slot.PublicID, &slot.URL, &slot.OwnerID, &kind, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan media slot: %w", err)
		}
		slot.OwnerKind = model.OwnerKind(kind)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
