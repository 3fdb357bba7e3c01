package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
	"lunchbox/internal/software/auth/service"
)

// AuthHTTPHandler adapts HTTP requests to the AuthService.
type AuthHTTPHandler struct {
	svc    ports.AuthService
	logger *logger.Logger
}

// NewAuthHTTPHandler wires an HTTP handler around the AuthService.
func NewAuthHTTPHandler(svc ports.AuthService, logger *logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts auth endpoints on the provided mux.
func (handler *AuthHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", handler.handleRegister)
	mux.HandleFunc("POST /api/auth/login", handler.handleLogin)
}

// --- Request DTOs (HTTP boundary) ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ----- Handler: POST /api/auth/register -----

func (handler *AuthHTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "role must be one of: CUSTOMER, RIDER, ADMIN", err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.Register(ctxWithTimeout, ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "email is already registered", err)
		case errors.Is(err, service.ErrWeakPassword):
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, "password must be at least 8 characters", err)
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrNameRequired):
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, err.Error(), err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "registration failed", err)
		}
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, authBody(res))
}

// ----- Handler: POST /api/auth/login -----

func (handler *AuthHTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.Login(ctxWithTimeout, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			handler.httpError(ctxWithTimeout, w, http.StatusUnauthorized, "invalid email or password", err)
			return
		}
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "login failed", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, authBody(res))
}

// authBody shapes the token + user payload returned by both endpoints.
func authBody(res *ports.AuthResult) map[string]any {
	return map[string]any{
		"token": res.Token,
		"user": map[string]any{
			"id":      res.User.ID,
			"name":    res.User.Name,
			"email":   res.User.Email,
			"role":    res.User.Role.String(),
			"phone":   res.User.Phone,
			"address": res.User.Address,
			"avatar":  res.User.Avatar,
		},
	}
}

// ----- general helpers -----

func (handler *AuthHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *AuthHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *AuthHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
