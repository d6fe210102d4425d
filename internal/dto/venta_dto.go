package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	// PrecioUnitario overrides the catalog price for this line when present.
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty" validate:"omitempty,min=0"`
}

type PagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=cash card transfer credit"`
	Monto  decimal.Decimal `json:"monto"  validate:"required,gt=0"`
}

// CrearVentaRequest is a validated checkout. When Pagos is empty the whole
// total is tendered with MetodoPago.
type CrearVentaRequest struct {
	ClienteID  *string            `json:"cliente_id"  validate:"omitempty,uuid"`
	Items      []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	Descuento  decimal.Decimal    `json:"descuento"   validate:"min=0"`
	MetodoPago string             `json:"metodo_pago" validate:"omitempty,oneof=cash card transfer credit"`
	Pagos      []PagoRequest      `json:"pagos"       validate:"omitempty,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	TotalLinea     decimal.Decimal `json:"total_linea"`
	TasaImpuesto   decimal.Decimal `json:"tasa_impuesto"`
	Impuesto       decimal.Decimal `json:"impuesto"`
}

type ClienteResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Email    *string `json:"email,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
}

type VentaResponse struct {
	ID         string              `json:"id"`
	Cliente    *ClienteResponse    `json:"cliente,omitempty"`
	UsuarioID  string              `json:"usuario_id"`
	Items      []ItemVentaResponse `json:"items"`
	Subtotal   decimal.Decimal     `json:"subtotal"`
	Impuesto   decimal.Decimal     `json:"impuesto"`
	Descuento  decimal.Decimal     `json:"descuento"`
	Total      decimal.Decimal     `json:"total"`
	MetodoPago string              `json:"metodo_pago"`
	Pagos      []PagoRequest       `json:"pagos"`
	// Vuelto is change owed to the customer; it is never persisted.
	Vuelto    decimal.Decimal `json:"vuelto"`
	CreatedAt string          `json:"created_at"`
}

type EliminarVentaResponse struct {
	Eliminada bool `json:"eliminada"`
}
