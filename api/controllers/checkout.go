package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/madererasanjose/storefront-backend/api/responses"
	"github.com/madererasanjose/storefront-backend/api/validators"
	checkoutsvc "github.com/madererasanjose/storefront-backend/internal/checkout"
	pkgerrors "github.com/madererasanjose/storefront-backend/pkg/errors"
	"github.com/madererasanjose/storefront-backend/pkg/logger"
	"github.com/madererasanjose/storefront-backend/pkg/types"
)

type checkoutRequest struct {
	CarritoID      string         `json:"carritoId"`
	ClienteID      *string        `json:"clienteId"`
	MetodoEntrega  string         `json:"metodoEntrega"`
	Direccion      *types.Address `json:"direccion"`
	ReferenciaPago *string        `json:"referenciaPago"`
}

type orderLineResponse struct {
	ProductoID     uuid.UUID        `json:"productoId"`
	Nombre         string           `json:"nombre"`
	SKU            string           `json:"sku"`
	Atributos      types.Attributes `json:"atributos,omitempty"`
	PrecioUnitario float64          `json:"precioUnitario"`
	Cantidad       float64          `json:"cantidad"`
	Total          float64          `json:"total"`
}

type shipmentResponse struct {
	ID     uuid.UUID `json:"id"`
	Estado string    `json:"estado"`
}

type orderResponse struct {
	OrdenID       uuid.UUID           `json:"ordenId"`
	CarritoID     uuid.UUID           `json:"carritoId"`
	Estado        string              `json:"estado"`
	Moneda        string              `json:"moneda"`
	MetodoEntrega string              `json:"metodoEntrega"`
	Subtotal      float64             `json:"subtotal"`
	Impuestos     float64             `json:"impuestos"`
	Envio         float64             `json:"envio"`
	Total         float64             `json:"total"`
	Items         []orderLineResponse `json:"items"`
	EnvioDetalle  *shipmentResponse   `json:"envioDetalle,omitempty"`
}

func newOrderResponse(result *checkoutsvc.Result) orderResponse {
	order := result.Order
	items := make([]orderLineResponse, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, orderLineResponse{
			ProductoID:     line.ProductID,
			Nombre:         line.Name,
			SKU:            line.SKU,
			Atributos:      line.Attributes,
			PrecioUnitario: line.UnitPrice,
			Cantidad:       line.Qty,
			Total:          line.Total,
		})
	}
	resp := orderResponse{
		OrdenID:       order.ID,
		CarritoID:     order.CartID,
		Estado:        order.Status.String(),
		Moneda:        order.Currency.String(),
		MetodoEntrega: order.DeliveryMethod.String(),
		Subtotal:      order.Subtotal,
		Impuestos:     order.Taxes,
		Envio:         order.Shipping,
		Total:         order.Total,
		Items:         items,
	}
	if result.Shipment != nil {
		resp.EnvioDetalle = &shipmentResponse{ID: result.Shipment.ID, Estado: result.Shipment.Status.String()}
	}
	return resp
}

// Checkout runs the order sequence for a cart. Partial completion surfaces as
// an error whose details name the failed steps and the created order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cartID, err := uuid.Parse(payload.CarritoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid carritoId").
				WithDetails(map[string]any{"carritoId": payload.CarritoID}))
			return
		}
		if payload.ReferenciaPago != nil {
			ref := validators.SanitizeString(*payload.ReferenciaPago, 120)
			payload.ReferenciaPago = &ref
		}
		ctx := logg.WithCartID(r.Context(), cartID.String())
		result, err := svc.Checkout(ctx, checkoutsvc.CheckoutInput{
			CartID:         cartID,
			CustomerID:     payload.ClienteID,
			DeliveryMethod: payload.MetodoEntrega,
			Address:        payload.Direccion,
			PaymentRef:     payload.ReferenciaPago,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(result))
	}
}
