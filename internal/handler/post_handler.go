package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/model"
	"community-api/internal/validation"
)

type postService interface {
	Create(ctx context.Context, principal model.Principal, req model.CreatePostRequest) (model.Post, error)
	FindOne(ctx context.Context, viewer *model.Principal, id string) (model.Post, error)
	Update(ctx context.Context, principal model.Principal, id string, req model.UpdatePostRequest) (model.Post, error)
	Delete(ctx context.Context, principal model.Principal, id string) error
	FindPublicBySlug(ctx context.Context, slug string) (model.Post, error)
	ListPublic(ctx context.Context) ([]model.PostSummary, error)
	ListMine(ctx context.Context, principal model.Principal) ([]model.PostSummary, error)
}

type PostHandler struct {
	posts postService
	resp  *Responder
}

func NewPostHandler(posts postService, resp *Responder) *PostHandler {
	return &PostHandler{posts: posts, resp: resp}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var payload model.CreatePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), principal, payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: post.ID})
}

func (h *PostHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindOne(r.Context(), optionalPrincipal(r), chi.URLParam(r, "id"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) FindPublicBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublic(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	posts, err := h.posts.ListMine(r.Context(), principal)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var payload model.UpdatePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), principal, chi.URLParam(r, "id"), payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
