package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lunchbox/internal/domain/kid"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/ports"
	"lunchbox/internal/software/account/service"
)

// --- Request DTO (HTTP boundary) ---

type kidRequest struct {
	Name            string   `json:"name"`
	SchoolName      string   `json:"school_name"`
	SchoolAddress   string   `json:"school_address"`
	SchoolLat       *float64 `json:"school_lat"`
	SchoolLng       *float64 `json:"school_lng"`
	ParentPhone     string   `json:"parent_phone"`
	DeliveryAddress string   `json:"delivery_address"`
}

func (req kidRequest) toInput() ports.KidInput {
	return ports.KidInput{
		Name:            req.Name,
		SchoolName:      req.SchoolName,
		SchoolAddress:   req.SchoolAddress,
		SchoolLat:       req.SchoolLat,
		SchoolLng:       req.SchoolLng,
		ParentPhone:     req.ParentPhone,
		DeliveryAddress: req.DeliveryAddress,
	}
}

// ----- Handler: POST /api/kids -----

func (handler *AccountHTTPHandler) handleAddKid(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req kidRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	k, err := handler.svc.AddKid(ctxWithTimeout, claims.Subject, req.toInput())
	if err != nil {
		handler.kidError(ctxWithTimeout, w, err, "failed to register kid")
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, kidBody(k))
}

// ----- Handler: GET /api/kids -----

func (handler *AccountHTTPHandler) handleListKids(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	kids, err := handler.svc.ListKids(ctxWithTimeout, claims.Subject, claims.Role)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to list kids", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, kidsBody(kids))
}

// ----- Handler: PUT /api/kids/{kid_id} -----

func (handler *AccountHTTPHandler) handleUpdateKid(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	kidID := r.PathValue("kid_id")
	if kidID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "kid_id is required", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req kidRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	k, err := handler.svc.UpdateKid(ctxWithTimeout, kidID, claims.Subject, claims.Role, req.toInput())
	if err != nil {
		handler.kidError(ctxWithTimeout, w, err, "failed to update kid")
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, kidBody(k))
}

// ----- Handler: GET /api/admin/kids -----

func (handler *AccountHTTPHandler) handleListAllKids(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	kids, err := handler.svc.ListAllKids(ctxWithTimeout, claims.Role)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "admin only", err)
			return
		}
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to list kids", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, kidsBody(kids))
}

// kidError maps service and validation errors onto HTTP statuses.
func (handler *AccountHTTPHandler) kidError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotYourKid):
		handler.httpError(ctx, w, http.StatusForbidden, "kid belongs to another customer", err)
	case errors.Is(err, kid.ErrNameRequired),
		errors.Is(err, kid.ErrSchoolRequired),
		errors.Is(err, kid.ErrParentPhoneRequired),
		errors.Is(err, kid.ErrDeliveryAddrRequired),
		errors.Is(err, kid.ErrInvalidSchoolLatitude),
		errors.Is(err, kid.ErrInvalidSchoolLongitud):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, fallback, err)
	}
}

func kidBody(k *kid.Kid) map[string]any {
	return map[string]any{
		"id":               k.ID,
		"customer_id":      k.CustomerID,
		"name":             k.Name,
		"school_name":      k.SchoolName,
		"school_address":   k.SchoolAddress,
		"school_lat":       k.SchoolLat,
		"school_lng":       k.SchoolLng,
		"parent_phone":     k.ParentPhone,
		"delivery_address": k.DeliveryAddress,
		"created_at":       k.CreatedAt,
		"updated_at":       k.UpdatedAt,
	}
}

func kidsBody(kids []*kid.Kid) map[string]any {
	items := make([]map[string]any, 0, len(kids))
	for _, k := range kids {
		items = append(items, kidBody(k))
	}
	return map[string]any{"kids": items, "count": len(items)}
}
