package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a sellable item scoped to one tenant.
// StockActual is only ever changed through signed deltas by the inventory ledger.
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_producto_tenant_barras"`
	CodigoBarras string          `gorm:"not null;uniqueIndex:idx_producto_tenant_barras"`
	Nombre       string          `gorm:"index;not null"`
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual  int             `gorm:"not null;default:0;check:chk_productos_stock_no_negativo,stock_actual >= 0"`
	Activo       bool            `gorm:"not null;default:true"`
	// TasaImpuesto overrides the store default when set (0.16 = 16%).
	TasaImpuesto   *decimal.Decimal `gorm:"type:decimal(6,4)"`
	ExentoImpuesto bool             `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Producto) TableName() string { return "productos" }

func (p *Producto) BeforeCreate(_ *gorm.DB) error {
	asignarID(&p.ID)
	return nil
}
