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
	"lunchbox/internal/general/ws"
	"lunchbox/internal/ports"
)

// OrderHTTPHandler adapts HTTP requests to the OrderService.
type OrderHTTPHandler struct {
	svc     ports.OrderService
	logger  *logger.Logger
	auth    *jwt.Manager
	gateway *ws.Gateway
}

// NewOrderHTTPHandler wires an HTTP handler around the OrderService.
func NewOrderHTTPHandler(
	svc ports.OrderService,
	logger *logger.Logger,
	auth *jwt.Manager,
	gateway *ws.Gateway,
) *OrderHTTPHandler {
	return &OrderHTTPHandler{svc: svc, logger: logger, auth: auth, gateway: gateway}
}

// RegisterRoutes mounts order endpoints on the provided mux.
func (handler *OrderHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer)(handler.handleCreateOrder),
	)
	mux.HandleFunc("GET /api/orders",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleRider, user.RoleAdmin)(handler.handleListOrders),
	)
	mux.HandleFunc("GET /api/orders/{order_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleRider, user.RoleAdmin)(handler.handleGetOrder),
	)
	mux.HandleFunc("PUT /api/orders/{order_id}/status",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider, user.RoleAdmin)(handler.handleUpdateStatus),
	)
	mux.HandleFunc("PUT /api/orders/{order_id}/assign",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleAssignRider),
	)

	// WebSocket endpoint authenticates its own first frame
	mux.HandleFunc("GET /ws", handler.gateway.Connect)
}

// ----- general helpers -----

// jsonResponse encodes data to the HTTP response, controlling status on failure.
func (handler *OrderHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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

// httpError sends a JSON error response with a message.
func (handler *OrderHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusUnsupportedMediaType {
		action = "unsupported_media_type"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *OrderHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
