package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"community-api/internal/model"
	"community-api/pkg/apierror"
)

type CommentService struct {
	comments CommentStore
	posts    PostStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewCommentService(comments CommentStore, posts PostStore, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments: comments,
		posts:    posts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListForPost returns the comments of a post the viewer is allowed to see.
func (s *CommentService) ListForPost(ctx context.Context, viewer *model.Principal, postID string) ([]model.Comment, error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) Create(ctx context.Context, principal model.Principal, postID string, req model.CreateCommentRequest) (model.Comment, error) {
	if _, err := s.visiblePost(ctx, &principal, postID); err != nil {
		return model.Comment{}, err
	}

	id := uuid.NewString()
	if req.ReplyID != nil {
		if err := s.checkReply(ctx, postID, id, *req.ReplyID); err != nil {
			return model.Comment{}, err
		}
	}

	now := s.now()
	comment := model.Comment{
		ID:        id,
		PostID:    postID,
		UserID:    principal.ID,
		ReplyTo:   req.ReplyID,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return model.Comment{}, err
	}

	s.logger.InfoContext(ctx, "comment created",
		slog.String("comment_id", id),
		slog.String("post_id", postID),
		slog.String("user_id", principal.ID),
	)
	return s.comments.FindByID(ctx, id)
}

// Update is reserved to the comment's author.
func (s *CommentService) Update(ctx context.Context, principal model.Principal, id string, req model.UpdateCommentRequest) (model.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if comment.UserID != principal.ID {
		return model.Comment{}, apierror.AccessDenied("you cannot modify this comment", nil)
	}

	var patch model.CommentPatch
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		patch.Content = &content
	}
	if req.ReplyID != nil {
		if err := s.checkReply(ctx, comment.PostID, id, *req.ReplyID); err != nil {
			return model.Comment{}, err
		}
		patch.ReplyTo = req.ReplyID
	}

	if err := s.comments.Update(ctx, id, patch, s.now()); err != nil {
		return model.Comment{}, err
	}
	return s.comments.FindByID(ctx, id)
}

// Delete is allowed to the author, the post owner and admins.
func (s *CommentService) Delete(ctx context.Context, principal model.Principal, id string) error {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if comment.UserID != principal.ID && !principal.IsAdmin() {
		post, err := s.posts.FindByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != principal.ID {
			return apierror.AccessDenied("you cannot delete this comment", nil)
		}
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "comment deleted",
		slog.String("comment_id", id),
		slog.String("user_id", principal.ID),
	)
	return nil
}

func (s *CommentService) visiblePost(ctx context.Context, viewer *model.Principal, postID string) (model.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return model.Post{}, err
	}
	if !post.Public && !canManage(viewer, post) {
		return model.Post{}, apierror.NotFound("post", postID)
	}
	return post, nil
}

// checkReply requires the parent to be another comment on the same post.
func (s *CommentService) checkReply(ctx context.Context, postID, selfID, replyID string) error {
	if replyID == selfID {
		return apierror.Validation("a comment cannot reply to itself", "replyId")
	}
	parent, err := s.comments.FindByID(ctx, replyID)
	if apierror.Is(err, apierror.KindNotFound) {
		return apierror.Validation("reply target does not exist", "replyId")
	}
	if err != nil {
		return err
	}
	if parent.PostID != postID {
		return apierror.Validation("reply target belongs to another post", "replyId")
	}
	return nil
}
