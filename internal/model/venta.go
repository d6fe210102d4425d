package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Venta is a committed sale. It is immutable after commit; the only way to
// change it is a full reversal (delete + restore).
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID  *uuid.UUID      `gorm:"type:uuid;index"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Impuesto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Pagos   []VentaPago `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
}

func (Venta) TableName() string { return "ventas" }

func (v *Venta) BeforeCreate(_ *gorm.DB) error {
	asignarID(&v.ID)
	return nil
}

// Referencia is the stable token that correlates ledger entries with this sale.
func (v *Venta) Referencia() string { return ReferenciaVenta(v.ID) }

// ReferenciaVenta builds the "Venta #<id>" token.
func ReferenciaVenta(id uuid.UUID) string { return fmt.Sprintf("Venta #%s", id) }

// VentaItem is a line of a Venta. PrecioUnitario is the price at the time of
// sale and TasaImpuesto the rate that was actually applied, so later catalog or
// settings changes never alter historical sales.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalLinea     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TasaImpuesto   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`
	Impuesto       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }

func (i *VentaItem) BeforeCreate(_ *gorm.DB) error {
	asignarID(&i.ID)
	return nil
}

// VentaPago is one tender of a Venta.
// Metodo: "cash" | "card" | "transfer" | "credit"
type VentaPago struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metodo    string          `gorm:"type:varchar(20);not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

func (VentaPago) TableName() string { return "venta_pagos" }

func (p *VentaPago) BeforeCreate(_ *gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

const (
	MetodoEfectivo      = "cash"
	MetodoTarjeta       = "card"
	MetodoTransferencia = "transfer"
	MetodoCredito       = "credit"
)
