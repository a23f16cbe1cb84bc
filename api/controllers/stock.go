package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/api/responses"
	"github.com/madererasanjose/storefront-backend/api/validators"
	stocksvc "github.com/madererasanjose/storefront-backend/internal/stock"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	"github.com/madererasanjose/storefront-backend/pkg/enums"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/logger"
)

type reserveRequest struct {
	ProductoID     string  `json:"productoId"`
	CarritoID      *string `json:"carritoId"`
	Cantidad       float64 `json:"cantidad"`
	TTLSegundos    *int64  `json:"ttlSegundos"`
	IdempotencyKey *string `json:"idempotencyKey"`
}

type releaseRequest struct {
	ReservaID string `json:"reservaId"`
}

type reservationResponse struct {
	ReservaID  uuid.UUID  `json:"reservaId"`
	ProductoID uuid.UUID  `json:"productoId"`
	CarritoID  *uuid.UUID `json:"carritoId,omitempty"`
	Cantidad   float64    `json:"cantidad"`
	Estado     string     `json:"estado"`
	ExpiraEn   time.Time  `json:"expiraEn"`
}

func newReservationResponse(record *models.StockReservation) reservationResponse {
	return reservationResponse{
		ReservaID:  record.ID,
		ProductoID: record.ProductID,
		CarritoID:  record.CartID,
		Cantidad:   record.Qty,
		Estado:     record.Status.String(),
		ExpiraEn:   record.ExpiresAt,
	}
}

// StockReserve places a hold. The Idempotency-Key header wins over the body
// field when both are present.
func StockReserve(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload reserveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := optionalUUID(payload.ProductoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := stocksvc.ReserveInput{
			ProductID:      productID,
			Qty:            payload.Cantidad,
			TTLSeconds:     payload.TTLSegundos,
			IdempotencyKey: payload.IdempotencyKey,
		}
		if header := validators.SanitizeString(r.Header.Get("Idempotency-Key"), 128); header != "" {
			input.IdempotencyKey = &header
		}
		if payload.CarritoID != nil && *payload.CarritoID != "" {
			cartID, parseErr := uuid.Parse(*payload.CarritoID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid carritoId").
					WithDetails(map[string]any{"carritoId": *payload.CarritoID}))
				return
			}
			input.CartID = &cartID
		}
		record, err := svc.Reserve(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newReservationResponse(record))
	}
}

// StockRelease frees a hold; releasing twice is fine.
func StockRelease(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload releaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservationID, err := uuid.Parse(payload.ReservaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservaId").
				WithDetails(map[string]any{"reservaId": payload.ReservaID}))
			return
		}
		record, err := svc.Release(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if record == nil {
			// Nothing to free; answer as if the hold were already released.
			responses.WriteSuccess(w, reservationResponse{
				ReservaID: reservationID,
				Estado:    enums.ReservationStatusReleased.String(),
			})
			return
		}
		responses.WriteSuccess(w, newReservationResponse(record))
	}
}

// StockAvailability answers the per-product snapshot for ?ids=a,b,c.
func StockAvailability(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("ids"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ids query parameter required"))
			return
		}
		var ids []uuid.UUID
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").
					WithDetails(map[string]any{"ids": part}))
				return
			}
			ids = append(ids, id)
		}
		snapshot, err := svc.Availability(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
