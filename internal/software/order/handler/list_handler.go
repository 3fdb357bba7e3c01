package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lunchbox/internal/general/jwt"
)

// ----- Handler: GET /api/orders?date=YYYY-MM-DD -----

func (handler *OrderHTTPHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListOrders(ctxWithTimeout, claims.Subject, claims.Role, date)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to list orders", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"orders": views,
		"count":  len(views),
	})
}
