package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type signUpResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	user, pair, err := h.svc.Accounts.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, signUpResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	pair, err := h.svc.Accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, pair, nil
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	pair, err := h.svc.Accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, pair, nil
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, nil, err
	}
	if err := h.svc.Accounts.SignOut(r.Context(), req.RefreshToken); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}

func (h *handler) signOutAll(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	if err := h.svc.Accounts.SignOutAll(r.Context()); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}

func (h *handler) session(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	user, err := h.svc.Accounts.Session(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, user, nil
}
