package repository

import (
	"context"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CuentaCobrarRepository interface {
	CreateTx(tx *gorm.DB, c *model.CuentaPorCobrar) error
	FindByVenta(ctx context.Context, tenantID, ventaID uuid.UUID) (*model.CuentaPorCobrar, error)
	DeleteByVentaTx(tx *gorm.DB, tenantID, ventaID uuid.UUID) (int64, error)
}

type cuentaCobrarRepo struct{ db *gorm.DB }

func NewCuentaCobrarRepository(db *gorm.DB) CuentaCobrarRepository {
	return &cuentaCobrarRepo{db: db}
}

func (r *cuentaCobrarRepo) CreateTx(tx *gorm.DB, c *model.CuentaPorCobrar) error {
	return tx.Create(c).Error
}

func (r *cuentaCobrarRepo) FindByVenta(ctx context.Context, tenantID, ventaID uuid.UUID) (*model.CuentaPorCobrar, error) {
	var c model.CuentaPorCobrar
	err := r.db.WithContext(ctx).Where("venta_id = ? AND tenant_id = ?", ventaID, tenantID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cuentaCobrarRepo) DeleteByVentaTx(tx *gorm.DB, tenantID, ventaID uuid.UUID) (int64, error) {
	res := tx.Where("venta_id = ? AND tenant_id = ?", ventaID, tenantID).Delete(&model.CuentaPorCobrar{})
	return res.RowsAffected, res.Error
}
