package repository

import (
	"context"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfiguracionRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error)
	// Upsert creates or replaces the settings row of the tenant.
	Upsert(ctx context.Context, c *model.ConfiguracionTienda) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error) {
	var c model.ConfiguracionTienda
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *configuracionRepo) Upsert(ctx context.Context, c *model.ConfiguracionTienda) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tasa_impuesto", "credito_habilitado"}),
	}).Create(c).Error
}
