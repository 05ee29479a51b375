package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/model"
	"community-api/internal/validation"
)

type commentService interface {
	ListForPost(ctx context.Context, viewer *model.Principal, postID string) ([]model.Comment, error)
	Create(ctx context.Context, principal model.Principal, postID string, req model.CreateCommentRequest) (model.Comment, error)
	Update(ctx context.Context, principal model.Principal, id string, req model.UpdateCommentRequest) (model.Comment, error)
	Delete(ctx context.Context, principal model.Principal, id string) error
}

type CommentHandler struct {
	comments commentService
	resp     *Responder
}

func NewCommentHandler(comments commentService, resp *Responder) *CommentHandler {
	return &CommentHandler{comments: comments, resp: resp}
}

func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForPost(r.Context(), optionalPrincipal(r), chi.URLParam(r, "postId"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// Create takes the post id from the path.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var payload model.CreateCommentRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), principal, chi.URLParam(r, "id"), payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: comment.ID})
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var payload model.UpdateCommentRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), principal, chi.URLParam(r, "id"), payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.comments.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
