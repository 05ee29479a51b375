package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"community-api/internal/model"
	"community-api/internal/repository"
	"community-api/pkg/apierror"
)

const (
	wordsPerMinute = 160
	maxSlugBase    = 80
	slugSuffixLen  = 8

	// publicFeedLimit caps the anonymous feed to the newest posts.
	publicFeedLimit = 50
)

type PostService struct {
	posts  PostStore
	media  Reconciler
	logger *slog.Logger
	now    func() time.Time
}

func NewPostService(posts PostStore, media Reconciler, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:  posts,
		media:  media,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostService) Create(ctx context.Context, principal model.Principal, req model.CreatePostRequest) (model.Post, error) {
	now := s.now()
	words, readTime := readingStats(req.Content)

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	tags := normalizeTags(req.Tags)

	post := model.Post{
		ID:        uuid.NewString(),
		UserID:    principal.ID,
		Title:     cleanLine(req.Title),
		Slug:      newSlug(req.Title),
		Content:   req.Content,
		Public:    public,
		Tags:      tags,
		Words:     words,
		ReadTime:  readTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return model.Post{}, err
	}

	if err := s.media.Reconcile(ctx, post.ID, model.OwnerPostCover, model.MediaFromField(req.CoverImage)); err != nil {
		return model.Post{}, err
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", principal.ID),
	)
	return s.posts.FindByID(ctx, post.ID)
}

// FindOne hides non-public posts from everyone but their owner and admins.
// viewer is nil for anonymous requests.
func (s *PostService) FindOne(ctx context.Context, viewer *model.Principal, id string) (model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}

	if !post.Public && !canManage(viewer, post) {
		return model.Post{}, apierror.NotFound("post", id)
	}

	return post, nil
}

// FindPublicBySlug resolves a public post by slug. Drafts are reported as
// missing to every caller.
func (s *PostService) FindPublicBySlug(ctx context.Context, slug string) (model.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return model.Post{}, err
	}
	if !post.Public {
		return model.Post{}, apierror.NotFound("post", slug)
	}
	return post, nil
}

func (s *PostService) ListPublic(ctx context.Context) ([]model.PostSummary, error) {
	return s.posts.ListPublic(ctx, publicFeedLimit)
}

// ListMine includes the caller's drafts.
func (s *PostService) ListMine(ctx context.Context, principal model.Principal) ([]model.PostSummary, error) {
	return s.posts.ListByUser(ctx, principal.ID)
}

func (s *PostService) Update(ctx context.Context, principal model.Principal, id string, req model.UpdatePostRequest) (model.Post, error) {
	post, err := s.authorize(ctx, principal, id)
	if err != nil {
		return model.Post{}, err
	}

	var cols repository.PostColumns
	if req.Title != nil {
		title := cleanLine(*req.Title)
		cols.Title = &title
		if title != post.Title {
			slug := newSlug(title)
			cols.Slug = &slug
		}
	}
	if req.Content != nil {
		words, readTime := readingStats(*req.Content)
		cols.Content = req.Content
		cols.Words = &words
		cols.ReadTime = &readTime
	}
	cols.Public = req.Public
	if req.Tags != nil {
		cols.Tags = normalizeTags(req.Tags)
	}

	if err := s.posts.Update(ctx, id, cols, s.now()); err != nil {
		return model.Post{}, err
	}

	if err := s.media.Reconcile(ctx, id, model.OwnerPostCover, model.MediaFromField(req.CoverImage)); err != nil {
		return model.Post{}, err
	}

	return s.posts.FindByID(ctx, id)
}

// Delete removes the cover object before the post row.
func (s *PostService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if _, err := s.authorize(ctx, principal, id); err != nil {
		return err
	}

	if err := s.media.Reconcile(ctx, id, model.OwnerPostCover, model.MediaValue("")); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", id),
		slog.String("user_id", principal.ID),
	)
	return nil
}

func (s *PostService) authorize(ctx context.Context, principal model.Principal, id string) (model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if !canManage(&principal, post) {
		return model.Post{}, apierror.AccessDenied("you cannot modify this post", nil)
	}
	return post, nil
}

func canManage(viewer *model.Principal, post model.Post) bool {
	return viewer != nil && (viewer.ID == post.UserID || viewer.IsAdmin())
}

// readingStats counts words and rounds the reading time up to whole minutes.
func readingStats(content string) (words int, minutes int) {
	words = len(strings.Fields(content))
	if words == 0 {
		return 0, 0
	}
	return words, int(math.Ceil(float64(words) / wordsPerMinute))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// newSlug derives a URL slug from title plus a short random suffix so equal
// titles never collide.
func newSlug(title string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}

	base := strings.Trim(b.String(), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
