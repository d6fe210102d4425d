package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

// CerrarCajaRequest carries the blind count; the expected amount is computed
// only after it is received.
type CerrarCajaRequest struct {
	MontoDeclarado *decimal.Decimal `json:"monto_declarado" validate:"omitempty,min=0"`
}

type MovimientoManualRequest struct {
	Tipo       string          `json:"tipo"       validate:"required,oneof=deposit withdraw"`
	Monto      decimal.Decimal `json:"monto"      validate:"required,gt=0"`
	Referencia string          `json:"referencia" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DesvioResponse struct {
	Monto         decimal.Decimal `json:"monto"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	Clasificacion string          `json:"clasificacion"` // normal | advertencia | critico
}

type SesionCajaResponse struct {
	ID             string           `json:"id"`
	UsuarioID      string           `json:"usuario_id"`
	MontoInicial   decimal.Decimal  `json:"monto_inicial"`
	MontoEsperado  decimal.Decimal  `json:"monto_esperado"`
	MontoCierre    *decimal.Decimal `json:"monto_cierre,omitempty"`
	MontoDeclarado *decimal.Decimal `json:"monto_declarado,omitempty"`
	Desvio         *DesvioResponse  `json:"desvio,omitempty"`
	Abierta        bool             `json:"abierta"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at,omitempty"`
}
