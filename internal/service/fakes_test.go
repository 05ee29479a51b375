package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"community-api/internal/model"
	"community-api/internal/repository"
	"community-api/pkg/apierror"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryIdentities struct {
	mu    sync.Mutex
	users map[string]model.Identity
	media *memoryMedia
}

func newMemoryIdentities(media *memoryMedia) *memoryIdentities {
	return &memoryIdentities{users: map[string]model.Identity{}, media: media}
}

func (m *memoryIdentities) put(u model.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memoryIdentities) withImage(u model.Identity) model.Identity {
	if m.media == nil {
		return u
	}
	if slot, err := m.media.FindByOwner(context.Background(), u.ID, model.OwnerUserProfile); err == nil {
		u.ProfileImage = slot.URL
	}
	return u
}

func (m *memoryIdentities) FindByID(_ context.Context, id string) (model.Identity, error) {
	m.mu.Lock()
	u, ok := m.users[id]
	m.mu.Unlock()
	if !ok {
		return model.Identity{}, apierror.NotFound("user", id)
	}
	return m.withImage(u), nil
}

func (m *memoryIdentities) FindByEmail(_ context.Context, email string) (model.Identity, error) {
	m.mu.Lock()
	var found *model.Identity
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			found = &u
			break
		}
	}
	m.mu.Unlock()
	if found == nil {
		return model.Identity{}, apierror.NotFound("user", "")
	}
	return m.withImage(*found), nil
}

func (m *memoryIdentities) Create(_ context.Context, u model.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apierror.Conflict("an account with this email already exists", "email")
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryIdentities) Update(_ context.Context, id string, patch model.IdentityPatch, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apierror.NotFound("user", id)
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.UserName != nil {
		u.UserName = *patch.UserName
	}
	if patch.Biography != nil {
		u.Biography = *patch.Biography
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}

func (m *memoryIdentities) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apierror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

type slotKey struct {
	owner string
	kind  model.OwnerKind
}

type memoryMedia struct {
	mu        sync.Mutex
	slots     map[slotKey]model.MediaSlot
	upsertErr error
	posts     *memoryPosts
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{slots: map[slotKey]model.MediaSlot{}}
}

func (m *memoryMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func (m *memoryMedia) FindByOwner(_ context.Context, ownerID string, kind model.OwnerKind) (model.MediaSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[slotKey{ownerID, kind}]
	if !ok {
		return model.MediaSlot{}, apierror.NotFound("media slot", ownerID)
	}
	return slot, nil
}

// Upsert and DeleteByOwner fail on a done context the way pgx does.
func (m *memoryMedia) Upsert(ctx context.Context, slot model.MediaSlot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slotKey{slot.OwnerID, slot.OwnerKind}] = slot
	return nil
}

func (m *memoryMedia) DeleteByOwner(ctx context.Context, ownerID string, kind model.OwnerKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slotKey{ownerID, kind})
	return nil
}

func (m *memoryMedia) ListOwnedByUser(_ context.Context, userID string) ([]model.MediaSlot, error) {
	owned := map[string]bool{userID: true}
	if m.posts != nil {
		for _, p := range m.posts.all() {
			if p.UserID == userID {
				owned[p.ID] = true
			}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.MediaSlot, 0)
	for key, slot := range m.slots {
		if owned[key.owner] {
			out = append(out, slot)
		}
	}
	return out, nil
}

type memoryPosts struct {
	mu    sync.Mutex
	posts map[string]model.Post
	media *memoryMedia
}

func newMemoryPosts(media *memoryMedia) *memoryPosts {
	p := &memoryPosts{posts: map[string]model.Post{}, media: media}
	if media != nil {
		media.posts = p
	}
	return p
}

func (m *memoryPosts) all() []model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	return out
}

func (m *memoryPosts) Create(_ context.Context, p model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.posts {
		if existing.Slug == p.Slug {
			return apierror.Conflict("a post with this slug already exists", p.Slug)
		}
	}
	m.posts[p.ID] = p
	return nil
}

func (m *memoryPosts) FindByID(ctx context.Context, id string) (model.Post, error) {
	m.mu.Lock()
	p, ok := m.posts[id]
	m.mu.Unlock()
	if !ok {
		return model.Post{}, apierror.NotFound("post", id)
	}
	if m.media != nil {
		if slot, err := m.media.FindByOwner(ctx, id, model.OwnerPostCover); err == nil {
			p.CoverImage = slot.URL
		}
	}
	return p, nil
}

func (m *memoryPosts) Update(_ context.Context, id string, cols repository.PostColumns, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return apierror.NotFound("post", id)
	}
	if cols.Title != nil {
		p.Title = *cols.Title
	}
	if cols.Slug != nil {
		p.Slug = *cols.Slug
	}
	if cols.Content != nil {
		p.Content = *cols.Content
	}
	if cols.Public != nil {
		p.Public = *cols.Public
	}
	if cols.Tags != nil {
		p.Tags = cols.Tags
	}
	if cols.Words != nil {
		p.Words = *cols.Words
	}
	if cols.ReadTime != nil {
		p.ReadTime = *cols.ReadTime
	}
	p.UpdatedAt = now
	m.posts[id] = p
	return nil
}

func (m *memoryPosts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return apierror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryPosts) FindBySlug(ctx context.Context, slug string) (model.Post, error) {
	for _, p := range m.all() {
		if p.Slug == slug {
			return m.FindByID(ctx, p.ID)
		}
	}
	return model.Post{}, apierror.NotFound("post", slug)
}

func (m *memoryPosts) summaries(keep func(model.Post) bool) []model.PostSummary {
	posts := m.all()
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	out := make([]model.PostSummary, 0)
	for _, p := range posts {
		if keep(p) {
			out = append(out, model.PostSummary{ID: p.ID, UserID: p.UserID, Title: p.Title, Slug: p.Slug, Public: p.Public,
				ReadTime: p.ReadTime, Words: p.Words, Tags: p.Tags, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt})
		}
	}
	return out
}

func (m *memoryPosts) ListPublicByUser(_ context.Context, userID string) ([]model.PostSummary, error) {
	return m.summaries(func(p model.Post) bool { return p.UserID == userID && p.Public }), nil
}

func (m *memoryPosts) ListByUser(_ context.Context, userID string) ([]model.PostSummary, error) {
	return m.summaries(func(p model.Post) bool { return p.UserID == userID }), nil
}

func (m *memoryPosts) ListPublic(_ context.Context, limit int) ([]model.PostSummary, error) {
	out := m.summaries(func(p model.Post) bool { return p.Public })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryPosts) StatsForUser(_ context.Context, userID string) (model.UserStats, error) {
	var stats model.UserStats
	for _, p := range m.all() {
		if p.UserID != userID {
			continue
		}
		stats.Posts++
		if p.Public {
			stats.PublicPosts++
		}
	}
	return stats, nil
}

type memoryNetwork struct {
	mu    sync.Mutex
	links map[string]model.NetworkURLs
}

func newMemoryNetwork() *memoryNetwork {
	return &memoryNetwork{links: map[string]model.NetworkURLs{}}
}

func (m *memoryNetwork) FindByUser(_ context.Context, userID string) (model.NetworkURLs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[userID], nil
}

func (m *memoryNetwork) Upsert(_ context.Context, userID string, n model.NetworkURLs, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[userID] = n
	return nil
}

type memoryComments struct {
	mu       sync.Mutex
	comments map[string]model.Comment
}

func newMemoryComments() *memoryComments {
	return &memoryComments{comments: map[string]model.Comment{}}
}

func (m *memoryComments) Create(_ context.Context, c model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

func (m *memoryComments) FindByID(_ context.Context, id string) (model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return model.Comment{}, apierror.NotFound("comment", id)
	}
	return c, nil
}

func (m *memoryComments) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryComments) Update(_ context.Context, id string, patch model.CommentPatch, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return apierror.NotFound("comment", id)
	}
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	if patch.ReplyTo != nil {
		c.ReplyTo = patch.ReplyTo
	}
	c.UpdatedAt = now
	m.comments[id] = c
	return nil
}

func (m *memoryComments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return apierror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

type memoryClaps struct {
	mu    sync.Mutex
	claps map[[2]string]bool
}

func newMemoryClaps() *memoryClaps {
	return &memoryClaps{claps: map[[2]string]bool{}}
}

func (m *memoryClaps) Add(_ context.Context, postID, userID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{postID, userID}
	if m.claps[key] {
		return apierror.Conflict("clap already added", postID)
	}
	m.claps[key] = true
	return nil
}

func (m *memoryClaps) Remove(_ context.Context, postID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{postID, userID}
	if !m.claps[key] {
		return apierror.NotFound("clap", postID)
	}
	delete(m.claps, key)
	return nil
}

var errStoreDown = errors.New("store down")
