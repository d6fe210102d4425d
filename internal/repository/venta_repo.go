package repository

import (
	"context"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateTx inserts the sale together with its items and payments.
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venta, error)
	// FindByIDTx loads a sale without tenant filtering so the caller can tell a
	// foreign sale apart from a missing one in its logs.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	// DeleteTx deletes the sale and the items and payments it owns.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Pagos").Preload("Cliente").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	if err := tx.Preload("Items").Preload("Pagos").Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("venta_id = ?", id).Delete(&model.VentaItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("venta_id = ?", id).Delete(&model.VentaPago{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Venta{}).Error
}
