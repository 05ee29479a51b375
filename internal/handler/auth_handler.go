package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"community-api/internal/model"
	"community-api/internal/service"
	"community-api/internal/validation"
)

type sessionManager interface {
	Login(ctx context.Context, email string, password string) (model.Session, error)
	Revalidate(ctx context.Context, refreshToken string) (model.SessionProfile, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshCookie(session model.Session) *http.Cookie
	ClearRefreshCookie() *http.Cookie
}

type delegatedSignIn interface {
	SignIn(ctx context.Context, provider string, code string, scope string) (model.Session, error)
}

type AuthHandler struct {
	sessions sessionManager
	oauth    delegatedSignIn
	resp     *Responder
}

func NewAuthHandler(sessions sessionManager, oauth delegatedSignIn, resp *Responder) *AuthHandler {
	return &AuthHandler{sessions: sessions, oauth: oauth, resp: resp}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload model.SignInRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := validation.Struct(payload); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	session, err := h.sessions.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	http.SetCookie(w, h.sessions.RefreshCookie(session))
	writeJSON(w, http.StatusOK, session.Profile)
}

func (h *AuthHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	profile, err := h.sessions.Revalidate(r.Context(), refreshCookie(r))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), refreshCookie(r)); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	http.SetCookie(w, h.sessions.ClearRefreshCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	session, err := h.oauth.SignIn(r.Context(),
		chi.URLParam(r, "provider"),
		chi.URLParam(r, "code"),
		chi.URLParam(r, "scope"),
	)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	http.SetCookie(w, h.sessions.RefreshCookie(session))
	writeJSON(w, http.StatusOK, session.Profile)
}

func refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(service.RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
