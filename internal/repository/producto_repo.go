package repository

import (
	"context"
	"errors"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStockInsuficiente is returned by DescontarStockTx when the conditional
// update matched no row.
var ErrStockInsuficiente = errors.New("stock insuficiente")

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
// Every read and write is scoped to a tenant: a product of another tenant is
// indistinguishable from a missing one.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Producto, error)

	// Used inside transactions: callers must pass the tx instance.

	// DescontarStockTx subtracts cantidad only if enough stock remains, as a
	// single conditional UPDATE. It returns the stock after the decrement.
	DescontarStockTx(tx *gorm.DB, tenantID, id uuid.UUID, cantidad int) (int, error)
	// RestaurarStockTx adds cantidad back unconditionally.
	RestaurarStockTx(tx *gorm.DB, tenantID, id uuid.UUID, cantidad int) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, tenantID, id uuid.UUID, cantidad int) (int, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND tenant_id = ? AND stock_actual >= ?", id, tenantID, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrStockInsuficiente
	}
	return r.stockTx(tx, id)
}

func (r *productoRepo) RestaurarStockTx(tx *gorm.DB, tenantID, id uuid.UUID, cantidad int) (int, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.stockTx(tx, id)
}

// stockTx reads back the row this transaction just updated (and therefore holds locked).
func (r *productoRepo) stockTx(tx *gorm.DB, id uuid.UUID) (int, error) {
	var stock int
	err := tx.Model(&model.Producto{}).Select("stock_actual").Where("id = ?", id).Scan(&stock).Error
	return stock, err
}
