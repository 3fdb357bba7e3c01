package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lunchbox/internal/domain/leave"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/software/account/service"
)

// --- Request DTO (HTTP boundary) ---

type markLeaveRequest struct {
	KidID     string `json:"kid_id"`
	LeaveDate string `json:"leave_date"`
}

// ----- Handler: POST /api/leaves -----

func (handler *AccountHTTPHandler) handleMarkLeave(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req markLeaveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l, err := handler.svc.MarkLeave(ctxWithTimeout, req.KidID, req.LeaveDate, claims.Subject, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrAlreadyMarked):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "leave already marked for this date", err)
		case errors.Is(err, leave.ErrTooLate):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "leave must be submitted at least 1 day before", err)
		case errors.Is(err, service.ErrNotYourKid):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "kid belongs to another customer", err)
		case errors.Is(err, leave.ErrKidRequired),
			errors.Is(err, leave.ErrDateRequired),
			errors.Is(err, leave.ErrInvalidDateForm):
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, err.Error(), err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to mark leave", err)
		}
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, map[string]any{
		"id":         l.ID,
		"kid_id":     l.KidID,
		"leave_date": l.LeaveDate,
		"created_at": l.CreatedAt,
	})
}

// ----- Handler: GET /api/leaves -----

func (handler *AccountHTTPHandler) handleListLeaves(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
			return
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := handler.svc.ListLeaves(ctxWithTimeout, claims.Subject, claims.Role, date)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to list leaves", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"leaves": rows,
		"count":  len(rows),
	})
}
