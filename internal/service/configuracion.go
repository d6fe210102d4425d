package service

import (
	"context"
	"errors"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfiguracionReader is the tenant-scoped store settings reader.
type ConfiguracionReader interface {
	Obtener(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error)
}

type configuracionReader struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionReader(repo repository.ConfiguracionRepository) ConfiguracionReader {
	return &configuracionReader{repo: repo}
}

// Obtener never falls back to a default tenant: missing settings are NotFound.
func (r *configuracionReader) Obtener(ctx context.Context, tenantID uuid.UUID) (*model.ConfiguracionTienda, error) {
	if tenantID == uuid.Nil {
		return nil, apierror.NotFound("Tienda", tenantID)
	}
	cfg, err := r.repo.FindByTenant(ctx, tenantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Tienda", tenantID)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
