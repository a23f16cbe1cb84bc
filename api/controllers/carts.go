package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/api/responses"
	"github.com/madererasanjose/storefront-backend/api/validators"
	cartsvc "github.com/madererasanjose/storefront-backend/internal/cart"
	"github.com/madererasanjose/storefront-backend/pkg/db/models"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/logger"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

type createCartRequest struct {
	UsuarioID *string `json:"usuarioId"`
	Moneda    string  `json:"moneda"`
}

// cartItemRequest also accepts the legacy snapshot fields older storefront
// clients still send. They are ignored; the catalog is the source of truth
// for names, images and prices.
type cartItemRequest struct {
	ProductoID     string            `json:"productoId"`
	Cantidad       float64           `json:"cantidad"`
	Atributos      map[string]string `json:"atributos"`
	NombreProducto *string           `json:"nombreProducto"`
	SKU            *string           `json:"sku"`
	ImagenURL      *string           `json:"imagenUrl"`
	PrecioUnitario *float64          `json:"precioUnitario"`
}

type cartItemPatchRequest struct {
	Cantidad  *float64           `json:"cantidad"`
	Atributos *map[string]string `json:"atributos"`
}

type cartItemResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductoID     uuid.UUID        `json:"productoId"`
	Nombre         string           `json:"nombre"`
	SKU            string           `json:"sku"`
	ImagenURL      string           `json:"imagenUrl,omitempty"`
	Atributos      types.Attributes `json:"atributos,omitempty"`
	PrecioUnitario float64          `json:"precioUnitario"`
	Cantidad       float64          `json:"cantidad"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	UsuarioID *string            `json:"usuarioId,omitempty"`
	Moneda    string             `json:"moneda"`
	Estado    string             `json:"estado"`
	Subtotal  float64            `json:"subtotal"`
	Impuestos float64            `json:"impuestos"`
	Envio     float64            `json:"envio"`
	Total     float64            `json:"total"`
	Items     []cartItemResponse `json:"items"`
}

func newCartResponse(record *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemResponse{
			ID:             item.ID,
			ProductoID:     item.ProductID,
			Nombre:         item.Name,
			SKU:            item.SKU,
			ImagenURL:      item.ImageURL,
			Atributos:      item.Attributes,
			PrecioUnitario: item.UnitPrice,
			Cantidad:       item.Qty,
		})
	}
	return cartResponse{
		ID:        record.ID,
		UsuarioID: record.UserID,
		Moneda:    record.Currency.String(),
		Estado:    record.Status.String(),
		Subtotal:  record.Subtotal,
		Impuestos: record.Taxes,
		Envio:     record.Shipping,
		Total:     record.Total,
		Items:     items,
	}
}

// CartCreate opens a cart, or returns the user's existing open one.
func CartCreate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Create(r.Context(), cartsvc.CreateCartInput{
			UserID:   payload.UsuarioID,
			Currency: payload.Moneda,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(record))
	}
}

// CartGet fetches a cart. `auto` creates a missing cart under the requested
// id; `usuarioId` additionally folds the user's stray open carts into it.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.Get(ctx, cartID, cartsvc.GetOptions{
			UserID:     r.URL.Query().Get("usuarioId"),
			AutoCreate: boolQuery(r, "auto"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartItemAdd adds a line to the cart.
func CartItemAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := optionalUUID(payload.ProductoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.AddItem(ctx, cartID, cartsvc.ItemInput{
			ProductID:  productID,
			Qty:        payload.Cantidad,
			Attributes: payload.Atributos,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(record))
	}
}

// CartItemUpdate patches one line's quantity or attributes.
func CartItemUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartItemPatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch := cartsvc.ItemPatch{Qty: payload.Cantidad}
		if payload.Atributos != nil {
			attrs := types.Attributes(*payload.Atributos)
			patch.Attributes = &attrs
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.UpdateItem(ctx, cartID, itemID, patch)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartItemRemove deletes one line.
func CartItemRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.RemoveItem(ctx, cartID, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear removes every line.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.Clear(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClose ends the cart's lifecycle.
func CartClose(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := pathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		record, err := svc.Close(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+param).
			WithDetails(map[string]any{param: raw})
	}
	return id, nil
}

// optionalUUID parses a possibly-empty id; empty maps to uuid.Nil so the
// service can report the missing field together with other violations.
func optionalUUID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid productoId").
			WithDetails(map[string]any{"productoId": raw})
	}
	return id, nil
}

func boolQuery(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
