package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/model"
	"community-api/internal/validation"
)

type userService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.Identity, error)
	FindOne(ctx context.Context, id string) (model.PublicProfile, error)
	Update(ctx context.Context, principal model.Principal, req model.UpdateUserRequest) (model.Identity, error)
	Delete(ctx context.Context, principal model.Principal) error
	Stats(ctx context.Context, principal model.Principal) (model.UserStats, error)
}

type UserHandler struct {
	users userService
	resp  *Responder
}

func NewUserHandler(users userService, resp *Responder) *UserHandler {
	return &UserHandler{users: users, resp: resp}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreatedResponse{ID: user.ID})
}

func (h *UserHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), principal, payload)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), principal); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	stats, err := h.users.Stats(r.Context(), principal)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
