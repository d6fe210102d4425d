package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfiguracionTienda holds the per-tenant settings the sale engine reads.
type ConfiguracionTienda struct {
	TenantID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TasaImpuesto      decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`
	CreditoHabilitado bool            `gorm:"not null"`
}

func (ConfiguracionTienda) TableName() string { return "configuracion_tienda" }
