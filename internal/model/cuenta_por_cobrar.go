package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentaPorCobrar is the balance a customer owes for a sale paid (partly) on credit.
// One sale produces at most one row. MontoPagado is accumulated elsewhere.
type CuentaPorCobrar struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VentaID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	MontoAdeudado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoPagado   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado        string          `gorm:"type:varchar(10);not null;default:'open'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (CuentaPorCobrar) TableName() string { return "cuentas_por_cobrar" }

func (c *CuentaPorCobrar) BeforeCreate(_ *gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

const (
	CuentaAbierta = "open"
	CuentaCerrada = "closed"
)
