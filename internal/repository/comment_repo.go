package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

const commentSelect = `
	SELECT c.id::text, c.post_id::text, c.user_id::text, c.reply_to::text, c.content,
	       u.id::text, u.name, COALESCE(m.url, ''), c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN media_slots m ON m.owner_id = u.id AND m.owner_kind = 'user-profile'`

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c model.Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, post_id, user_id, reply_to, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.PostID, c.UserID, c.ReplyTo, c.Content, c.CreatedAt, c.UpdatedAt)
	if isForeignKeyViolation(err) || isMissing(err) {
		return apierror.NotFound("post", c.PostID)
	}
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if isMissing(err) {
		return model.Comment{}, apierror.NotFound("comment", id)
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at ASC`, postID)
	if isMissing(err) {
		return []model.Comment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		if isMissing(err) {
			return []model.Comment{}, nil
		}
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, id string, patch model.CommentPatch, now time.Time) error {
	sets := make([]string, 0, 3)
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.ReplyTo != nil {
		add("reply_to", *patch.ReplyTo)
	}
	add("updated_at", now)

	tag, err := r.db.Exec(ctx, `UPDATE comments SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isMissing(err) || isForeignKeyViolation(err) {
		return apierror.NotFound("comment", id)
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("comment", id)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if isMissing(err) {
		return apierror.NotFound("comment", id)
	}
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("comment", id)
	}
	return nil
}

func scanComment(row pgx.Row) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.ReplyTo, &c.Content,
		&c.Author.ID, &c.Author.Name, &c.Author.ProfileImage, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
