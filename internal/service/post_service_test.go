package service

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

type postFixture struct {
	posts  *memoryPosts
	media  *memoryMedia
	remote *objectStore
	svc    *PostService
}

func newPostFixture() *postFixture {
	media := newMemoryMedia()
	posts := newMemoryPosts(media)
	remote := newObjectStore()
	reconciler := NewAssetReconciler(media, remote, testFolders, nil, discardLogger())
	return &postFixture{posts: posts, media: media, remote: remote, svc: NewPostService(posts, reconciler, discardLogger())}
}

var (
	owner    = model.Principal{ID: "u-1", Role: model.RoleUser}
	stranger = model.Principal{ID: "u-2", Role: model.RoleUser}
	admin    = model.Principal{ID: "u-3", Role: model.RoleAdmin}
)

func createRequest() model.CreatePostRequest {
	return model.CreatePostRequest{
		Title:   "Écrire du Go idiomatique!",
		Content: strings.Repeat("word ", 161),
		Tags:    []string{"Go", " go ", "backend"},
	}
}

func TestPostCreate(t *testing.T) {
	f := newPostFixture()
	req := createRequest()
	req.CoverImage = strPtr("cover-a")

	post, err := f.svc.Create(context.Background(), owner, req)
	require.NoError(t, err)

	assert.Equal(t, "u-1", post.UserID)
	assert.True(t, post.Public)
	assert.Equal(t, 161, post.Words)
	assert.Equal(t, 2, post.ReadTime)
	assert.Equal(t, []string{"go", "backend"}, post.Tags)
	assert.Regexp(t, regexp.MustCompile(`^ecrire-du-go-idiomatique-[0-9a-f]{8}$`), post.Slug)
	assert.Contains(t, post.CoverImage, "cover-a")
	assert.Equal(t, 1, f.remote.size())
}

func TestPostSlugsDoNotCollide(t *testing.T) {
	assert.NotEqual(t, newSlug("Same title here"), newSlug("Same title here"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), newSlug("!!!"))
}

func TestReadingStats(t *testing.T) {
	words, minutes := readingStats("")
	assert.Zero(t, words)
	assert.Zero(t, minutes)

	words, minutes = readingStats(strings.Repeat("a ", 160))
	assert.Equal(t, 160, words)
	assert.Equal(t, 1, minutes)
}

func TestPostVisibility(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	req := createRequest()
	hidden := false
	req.Public = &hidden

	post, err := f.svc.Create(ctx, owner, req)
	require.NoError(t, err)

	_, err = f.svc.FindOne(ctx, nil, post.ID)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = f.svc.FindOne(ctx, &stranger, post.ID)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = f.svc.FindOne(ctx, &owner, post.ID)
	assert.NoError(t, err)

	_, err = f.svc.FindOne(ctx, &admin, post.ID)
	assert.NoError(t, err)
}

func TestPostUpdate(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	req := createRequest()
	req.CoverImage = strPtr("cover-a")
	post, err := f.svc.Create(ctx, owner, req)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, stranger, post.ID, model.UpdatePostRequest{Title: strPtr("Hijacked title here")})
	assert.True(t, apierror.Is(err, apierror.KindAccessDenied))

	content := strings.Repeat("longer ", 400)
	updated, err := f.svc.Update(ctx, owner, post.ID, model.UpdatePostRequest{
		Title:      strPtr("A brand new title"),
		Content:    &content,
		CoverImage: strPtr("cover-b"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A brand new title", updated.Title)
	assert.True(t, strings.HasPrefix(updated.Slug, "a-brand-new-title-"))
	assert.Equal(t, 400, updated.Words)
	assert.Equal(t, 3, updated.ReadTime)
	assert.Contains(t, updated.CoverImage, "cover-b")
	assert.Equal(t, 1, f.remote.size())

	updated, err = f.svc.Update(ctx, admin, post.ID, model.UpdatePostRequest{CoverImage: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.CoverImage)
	assert.Zero(t, f.remote.size())
}

func TestPostDelete(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	req := createRequest()
	req.CoverImage = strPtr("cover-a")
	post, err := f.svc.Create(ctx, owner, req)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, stranger, post.ID)
	assert.True(t, apierror.Is(err, apierror.KindAccessDenied))

	require.NoError(t, f.svc.Delete(ctx, owner, post.ID))
	assert.Zero(t, f.remote.size())
	assert.Zero(t, f.media.count())

	err = f.svc.Delete(ctx, owner, post.ID)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestPostFindPublicBySlugHidesDrafts(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	public, err := f.svc.Create(ctx, owner, createRequest())
	require.NoError(t, err)

	req := createRequest()
	hidden := false
	req.Public = &hidden
	draft, err := f.svc.Create(ctx, owner, req)
	require.NoError(t, err)

	got, err := f.svc.FindPublicBySlug(ctx, public.Slug)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)

	_, err = f.svc.FindPublicBySlug(ctx, draft.Slug)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = f.svc.FindPublicBySlug(ctx, "no-such-slug")
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestPostListings(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, f.posts.Create(ctx, model.Post{ID: "p-1", UserID: owner.ID, Slug: "a", Public: true, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, f.posts.Create(ctx, model.Post{ID: "p-2", UserID: owner.ID, Slug: "b", CreatedAt: now}))
	require.NoError(t, f.posts.Create(ctx, model.Post{ID: "p-3", UserID: stranger.ID, Slug: "c", Public: true, CreatedAt: now}))

	feed, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "p-3", feed[0].ID)
	assert.Equal(t, "p-1", feed[1].ID)

	mine, err := f.svc.ListMine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "p-2", mine[0].ID)
	assert.False(t, mine[0].Public)
}
