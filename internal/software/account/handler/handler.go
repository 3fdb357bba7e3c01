package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// AccountHTTPHandler adapts HTTP requests to the AccountService.
type AccountHTTPHandler struct {
	svc    ports.AccountService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewAccountHTTPHandler wires an HTTP handler around the AccountService.
func NewAccountHTTPHandler(svc ports.AccountService, logger *logger.Logger, auth *jwt.Manager) *AccountHTTPHandler {
	return &AccountHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts profile, kid and leave endpoints on the provided mux.
func (handler *AccountHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	everyone := []user.Role{user.RoleCustomer, user.RoleRider, user.RoleAdmin}

	mux.HandleFunc("GET /api/profile",
		jwt.AuthMiddlewareFunc(handler.auth, everyone...)(handler.handleGetProfile),
	)
	mux.HandleFunc("PUT /api/profile",
		jwt.AuthMiddlewareFunc(handler.auth, everyone...)(handler.handleUpdateProfile),
	)
	mux.HandleFunc("POST /api/kids",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer)(handler.handleAddKid),
	)
	mux.HandleFunc("GET /api/kids",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleListKids),
	)
	mux.HandleFunc("PUT /api/kids/{kid_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleUpdateKid),
	)
	mux.HandleFunc("GET /api/admin/kids",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleListAllKids),
	)
	mux.HandleFunc("POST /api/leaves",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleMarkLeave),
	)
	mux.HandleFunc("GET /api/leaves",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleListLeaves),
	)
}

// ----- general helpers -----

func (handler *AccountHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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

func (handler *AccountHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
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

func (handler *AccountHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
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
