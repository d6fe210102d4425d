package repository

import (
	"context"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	Create(ctx context.Context, a *model.Auditoria) error
	ListByRef(ctx context.Context, tenantID, refID uuid.UUID) ([]model.Auditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, a *model.Auditoria) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditoriaRepo) ListByRef(ctx context.Context, tenantID, refID uuid.UUID) ([]model.Auditoria, error) {
	var entries []model.Auditoria
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND ref_id = ?", tenantID, refID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
