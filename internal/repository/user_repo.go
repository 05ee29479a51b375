package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

const identitySelect = `
	SELECT u.id::text, u.email, u.password_hash, u.name, u.user_name, u.biography,
	       u.location, u.role, COALESCE(m.url, ''), u.created_at, u.updated_at
	FROM users u
	LEFT JOIN media_slots m ON m.owner_id = u.id AND m.owner_kind = 'user-profile'`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.Identity, error) {
	u, err := scanIdentity(r.db.QueryRow(ctx, identitySelect+` WHERE u.id = $1`, id))
	if isMissing(err) {
		return model.Identity{}, apierror.NotFound("user", id)
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	u, err := scanIdentity(r.db.QueryRow(ctx, identitySelect+` WHERE lower(u.email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Identity{}, apierror.NotFound("user", "")
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.Identity) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apierror.Conflict("an account with this email already exists", "email")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update applies the non-nil columns of patch. The media part of the patch
// is handled by the reconciler, not here.
func (r *UserRepository) Update(ctx context.Context, id string, patch model.IdentityPatch, now time.Time) error {
	sets := make([]string, 0, 6)
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.UserName != nil {
		add("user_name", *patch.UserName)
	}
	if patch.Biography != nil {
		add("biography", *patch.Biography)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	add("updated_at", now)

	tag, err := r.db.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isMissing(err) {
		return apierror.NotFound("user", id)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if isMissing(err) {
		return apierror.NotFound("user", id)
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("user", id)
	}
	return nil
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var u model.Identity
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.UserName, &u.Biography,
		&u.Location, &role, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.Identity{}, err
	}
	u.Role = model.ParseRole(role)
	return u, nil
}
