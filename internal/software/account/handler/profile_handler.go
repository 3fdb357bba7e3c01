package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/jwt"
)

// --- Request DTO (HTTP boundary) ---

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ----- Handler: GET /api/profile -----

func (handler *AccountHTTPHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := handler.svc.Profile(ctxWithTimeout, claims.Subject)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, profileBody(u))
}

// ----- Handler: PUT /api/profile -----

func (handler *AccountHTTPHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req updateProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := handler.svc.UpdateProfile(ctxWithTimeout, claims.Subject, req.Name, req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, user.ErrNameRequired) {
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, err.Error(), err)
			return
		}
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to update profile", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, profileBody(u))
}

// profileBody shapes the user record without the password hash.
func profileBody(u *user.User) map[string]any {
	return map[string]any{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"role":    u.Role.String(),
		"phone":   u.Phone,
		"address": u.Address,
		"avatar":  u.Avatar,
	}
}
