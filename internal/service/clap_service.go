package service

import (
	"context"
	"time"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

// ClapService lets a user applaud a post once.
type ClapService struct {
	claps ClapStore
	posts PostStore
	now   func() time.Time
}

func NewClapService(claps ClapStore, posts PostStore) *ClapService {
	return &ClapService{
		claps: claps,
		posts: posts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ClapService) Add(ctx context.Context, principal model.Principal, postID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.Public && !canManage(&principal, post) {
		return apierror.NotFound("post", postID)
	}
	return s.claps.Add(ctx, postID, principal.ID, s.now())
}

func (s *ClapService) Remove(ctx context.Context, principal model.Principal, postID string) error {
	return s.claps.Remove(ctx, postID, principal.ID)
}
