package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

func TestPostRepositoryFindByIDIncludesCover(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery(`FROM posts p\s+LEFT JOIN media_slots m`).WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "slug", "content", "public", "tags",
			"words", "read_time", "url", "claps", "comments", "created_at", "updated_at"}).
			AddRow("p-1", "u-1", "A title long enough", "a-title-long-enough-1a2b3c", "body", true, []string{"go"},
				120, 1, "https://cdn/posts/p-1", 3, 2, now, now))

	post, err := repo.FindByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/posts/p-1", post.CoverImage)
	assert.Equal(t, []string{"go"}, post.Tags)
	assert.Equal(t, 3, post.Claps)
	assert.Equal(t, 2, post.Comments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func summaryColumns() []string {
	return []string{"id", "user_id", "title", "slug", "public", "read_time", "words", "tags",
		"claps", "comments", "created_at", "updated_at"}
}

func TestPostRepositoryFindBySlug(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)

	mock.ExpectQuery(`FROM posts p\s+LEFT JOIN media_slots m .+ WHERE p.slug = \$1`).WithArgs("missing-slug").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindBySlug(context.Background(), "missing-slug")
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryListPublicIsCapped(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE p.public = true ORDER BY p.created_at DESC LIMIT \$1`).WithArgs(50).
		WillReturnRows(pgxmock.NewRows(summaryColumns()).
			AddRow("p-2", "u-2", "Second title here", "second", true, 1, 80, []string{"go"}, 0, 0, now, now).
			AddRow("p-1", "u-1", "First title here!", "first", true, 2, 400, []string{}, 1, 0, now.Add(-time.Hour), now))

	posts, err := repo.ListPublic(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p-2", posts[0].ID)
	assert.Equal(t, 1, posts[1].Claps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryListByUserIncludesDrafts(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM posts p WHERE p.user_id = \$1 ORDER BY`).WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows(summaryColumns()).
			AddRow("p-3", "u-1", "A private draft", "draft", false, 1, 50, []string{}, 0, 0, now, now))

	posts, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].Public)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryStatsForUser(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)

	mock.ExpectQuery(`FILTER \(WHERE p.public\)`).WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"posts", "public_posts", "claps", "comments"}).AddRow(5, 3, 12, 7))

	stats, err := repo.StatsForUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{Posts: 5, PublicPosts: 3, ClapsReceived: 12, CommentsReceived: 7}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdate(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()
	public := false

	mock.ExpectExec(`UPDATE posts SET public = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("p-1", false, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), "p-1", PostColumns{Public: &public}, now)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryListPublicByUser(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM posts p WHERE p.user_id = \$1 AND p.public = true`).WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows(summaryColumns()).
			AddRow("p-1", "u-1", "A title long enough", "a-title", true, 1, 100, []string{}, 4, 1, now, now))

	posts, err := repo.ListPublicByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, model.PostSummary{
		ID: "p-1", UserID: "u-1", Title: "A title long enough", Slug: "a-title", Public: true, ReadTime: 1, Words: 100,
		Tags: []string{}, Claps: 4, Comments: 1, CreatedAt: now, UpdatedAt: now,
	}, posts[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryMalformedIDIsNotFound(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPostRepository(mock)
	badUUID := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}

	mock.ExpectQuery(`FROM posts p`).WithArgs("not-a-uuid").WillReturnError(badUUID)
	mock.ExpectExec(`DELETE FROM posts`).WithArgs("not-a-uuid").WillReturnError(badUUID)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	err = repo.Delete(context.Background(), "not-a-uuid")
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
