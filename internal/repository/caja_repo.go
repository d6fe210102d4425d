package repository

import (
	"context"
	"errors"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaRepository interface {
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	// FindSesionAbierta returns (nil, nil) when the user has no open session.
	FindSesionAbierta(ctx context.Context, usuarioID, tenantID uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaTx(tx *gorm.DB, usuarioID, tenantID uuid.UUID) (*model.SesionCaja, error)
	UpdateSesion(ctx context.Context, s *model.SesionCaja) error
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	// DeleteMovimientosByReferenciaTx removes every movement carrying the token,
	// whichever session (open or closed) it was posted to.
	DeleteMovimientosByReferenciaTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error)
	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, usuarioID, tenantID uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionAbiertaTx(r.db.WithContext(ctx), usuarioID, tenantID)
}

func (r *cajaRepo) FindSesionAbiertaTx(tx *gorm.DB, usuarioID, tenantID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Where("usuario_id = ? AND tenant_id = ? AND closed_at IS NULL", usuarioID, tenantID).
		Order("opened_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) UpdateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Omit("Movimientos").Save(s).Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) DeleteMovimientosByReferenciaTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error) {
	sesiones := tx.Session(&gorm.Session{NewDB: true}).
		Model(&model.SesionCaja{}).Select("id").Where("tenant_id = ?", tenantID)
	res := tx.Where("referencia = ? AND sesion_caja_id IN (?)", referencia, sesiones).
		Delete(&model.MovimientoCaja{})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}
