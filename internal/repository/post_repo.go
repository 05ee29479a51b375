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

const (
	clapCount    = `(SELECT count(*) FROM claps c WHERE c.post_id = p.id)`
	commentCount = `(SELECT count(*) FROM comments c WHERE c.post_id = p.id)`
)

const postSelect = `
	SELECT p.id::text, p.user_id::text, p.title, p.slug, p.content, p.public, p.tags,
	       p.words, p.read_time, COALESCE(m.url, ''), ` + clapCount + `, ` + commentCount + `,
	       p.created_at, p.updated_at
	FROM posts p
	LEFT JOIN media_slots m ON m.owner_id = p.id AND m.owner_kind = 'post-cover'`

const summarySelect = `
	SELECT p.id::text, p.user_id::text, p.title, p.slug, p.public, p.read_time, p.words, p.tags,
	       ` + clapCount + `, ` + commentCount + `, p.created_at, p.updated_at
	FROM posts p`

// PostColumns is the column update for a post. Nil fields are left untouched.
type PostColumns struct {
	Title    *string
	Slug     *string
	Content  *string
	Public   *bool
	Tags     []string
	Words    *int
	ReadTime *int
}

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p model.Post) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (id, user_id, title, slug, content, public, tags, words, read_time, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.UserID, p.Title, p.Slug, p.Content, p.Public, p.Tags, p.Words, p.ReadTime, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return apierror.Conflict("a post with this slug already exists", p.Slug)
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (model.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if isMissing(err) {
		return model.Post{}, apierror.NotFound("post", id)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (model.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.slug = $1`, slug))
	if isMissing(err) {
		return model.Post{}, apierror.NotFound("post", slug)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, cols PostColumns, now time.Time) error {
	sets := make([]string, 0, 8)
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if cols.Title != nil {
		add("title", *cols.Title)
	}
	if cols.Slug != nil {
		add("slug", *cols.Slug)
	}
	if cols.Content != nil {
		add("content", *cols.Content)
	}
	if cols.Public != nil {
		add("public", *cols.Public)
	}
	if cols.Tags != nil {
		add("tags", cols.Tags)
	}
	if cols.Words != nil {
		add("words", *cols.Words)
	}
	if cols.ReadTime != nil {
		add("read_time", *cols.ReadTime)
	}
	add("updated_at", now)

	tag, err := r.db.Exec(ctx, `UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isUniqueViolation(err) {
		return apierror.Conflict("a post with this slug already exists", "slug")
	}
	if isMissing(err) {
		return apierror.NotFound("post", id)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("post", id)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if isMissing(err) {
		return apierror.NotFound("post", id)
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("post", id)
	}
	return nil
}

func (r *PostRepository) ListPublicByUser(ctx context.Context, userID string) ([]model.PostSummary, error) {
	return r.listSummaries(ctx, summarySelect+` WHERE p.user_id = $1 AND p.public = true ORDER BY p.created_at DESC`, userID)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]model.PostSummary, error) {
	return r.listSummaries(ctx, summarySelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC`, userID)
}

func (r *PostRepository) ListPublic(ctx context.Context, limit int) ([]model.PostSummary, error) {
	return r.listSummaries(ctx, summarySelect+` WHERE p.public = true ORDER BY p.created_at DESC LIMIT $1`, limit)
}

// StatsForUser counts the user's posts and the engagement they received.
func (r *PostRepository) StatsForUser(ctx context.Context, userID string) (model.UserStats, error) {
	var s model.UserStats
	err := r.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE p.public),
		        COALESCE(sum(`+clapCount+`), 0)::bigint,
		        COALESCE(sum(`+commentCount+`), 0)::bigint
		 FROM posts p WHERE p.user_id = $1`, userID).
		Scan(&s.Posts, &s.PublicPosts, &s.ClapsReceived, &s.CommentsReceived)
	if isMissing(err) {
		return model.UserStats{}, apierror.NotFound("user", userID)
	}
	if err != nil {
		return model.UserStats{}, fmt.Errorf("post stats: %w", err)
	}
	return s, nil
}

func (r *PostRepository) listSummaries(ctx context.Context, query string, args ...any) ([]model.PostSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if isMissing(err) {
		return []model.PostSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.PostSummary, 0)
	for rows.Next() {
		var p model.PostSummary
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Public, &p.ReadTime, &p.Words, &p.Tags,
			&p.Claps, &p.Comments, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		if isMissing(err) {
			return []model.PostSummary{}, nil
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Content, &p.Public, &p.Tags,
		&p.Words, &p.ReadTime, &p.CoverImage, &p.Claps, &p.Comments, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
