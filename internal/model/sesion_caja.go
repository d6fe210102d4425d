package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SesionCaja represents the lifecycle of a cashier's register session.
// A session is open while ClosedAt is nil; at most one is open per (usuario, tenant).
type SesionCaja struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_sesion_usuario_tenant"`
	UsuarioID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_sesion_usuario_tenant"`
	MontoInicial decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MontoCierre  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OpenedAt     time.Time
	ClosedAt     *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

func (s *SesionCaja) BeforeCreate(_ *gorm.DB) error {
	asignarID(&s.ID)
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	return nil
}

// Abierta reports whether the session still accepts movements.
func (s *SesionCaja) Abierta() bool { return s.ClosedAt == nil }

// MovimientoCaja is an append-only event in the cash register ledger.
// Tipo: "sale" | "deposit" | "withdraw"
// Referencia carries "Venta #<id>" for sale-originated movements so a reversal
// can find them even after the session closed.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Referencia   string          `gorm:"not null;index"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

func (m *MovimientoCaja) BeforeCreate(_ *gorm.DB) error {
	asignarID(&m.ID)
	return nil
}

const (
	MovimientoCajaVenta    = "sale"
	MovimientoCajaDeposito = "deposit"
	MovimientoCajaRetiro   = "withdraw"
)
