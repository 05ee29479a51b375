package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/model"
)

type clapService interface {
	Add(ctx context.Context, principal model.Principal, postID string) error
	Remove(ctx context.Context, principal model.Principal, postID string) error
}

type ClapHandler struct {
	claps clapService
	resp  *Responder
}

func NewClapHandler(claps clapService, resp *Responder) *ClapHandler {
	return &ClapHandler{claps: claps, resp: resp}
}

func (h *ClapHandler) Add(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	postID := chi.URLParam(r, "id")
	if err := h.claps.Add(r.Context(), principal, postID); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: postID})
}

func (h *ClapHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.claps.Remove(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
