package service

import (
	"context"
	"fmt"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductoSnapshot is the catalog state a sale attempt prices against.
// It is read once per attempt; the stock figure is only a pre-check, the
// conditional decrement is authoritative.
type ProductoSnapshot struct {
	ID           uuid.UUID
	Nombre       string
	Precio       decimal.Decimal
	Stock        int
	Activo       bool
	TasaImpuesto *decimal.Decimal
	Exento       bool
}

type CatalogoReader interface {
	// Snapshot resolves every id within the tenant or fails with NotFound.
	Snapshot(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductoSnapshot, error)
}

type catalogoReader struct {
	repo repository.ProductoRepository
}

func NewCatalogoReader(repo repository.ProductoRepository) CatalogoReader {
	return &catalogoReader{repo: repo}
}

func (c *catalogoReader) Snapshot(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductoSnapshot, error) {
	unicos := make([]uuid.UUID, 0, len(ids))
	vistos := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !vistos[id] {
			vistos[id] = true
			unicos = append(unicos, id)
		}
	}

	productos, err := c.repo.FindByIDs(ctx, tenantID, unicos)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}

	snapshot := make(map[uuid.UUID]ProductoSnapshot, len(productos))
	for _, p := range productos {
		snapshot[p.ID] = ProductoSnapshot{
			ID:           p.ID,
			Nombre:       p.Nombre,
			Precio:       p.PrecioVenta,
			Stock:        p.StockActual,
			Activo:       p.Activo,
			TasaImpuesto: p.TasaImpuesto,
			Exento:       p.ExentoImpuesto,
		}
	}
	for _, id := range unicos {
		if _, ok := snapshot[id]; !ok {
			return nil, apierror.NotFound("Producto", id)
		}
	}
	return snapshot, nil
}
