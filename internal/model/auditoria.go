package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Auditoria is an append-only audit entry. Writes are best-effort: losing one
// must never fail the operation it describes.
type Auditoria struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Evento    string         `gorm:"type:varchar(30);not null"`
	UsuarioID uuid.UUID      `gorm:"type:uuid;not null"`
	RefTipo   string         `gorm:"type:varchar(30);not null"`
	RefID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time
}

func (Auditoria) TableName() string { return "auditoria" }

func (a *Auditoria) BeforeCreate(_ *gorm.DB) error {
	asignarID(&a.ID)
	return nil
}

const (
	EventoVentaCreada    = "sale_create"
	EventoVentaRevertida = "sale_reverse"
)
