package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MotivoInventarioInicial tags the movement that seeds a product's stock.
const MotivoInventarioInicial = "Inventario Inicial"

// Reserva is one stock decrement requested by a sale line.
type Reserva struct {
	ProductoID uuid.UUID
	Nombre     string
	Cantidad   int
}

// InventarioService is the inventory ledger: every stock change is a signed
// delta plus one append-only movement.
type InventarioService interface {
	// ReservarYDescontarTx is called within a sale transaction: requires a live *gorm.DB tx.
	ReservarYDescontarTx(tx *gorm.DB, tenantID uuid.UUID, r Reserva, referencia string, ventaID uuid.UUID) error
	// RestaurarTx adds stock back during a reversal. A product that no longer
	// exists is skipped.
	RestaurarTx(tx *gorm.DB, tenantID, productoID uuid.UUID, cantidad int) error
	EliminarMovimientosTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error)

	RegistrarInventarioInicial(ctx context.Context, tenantID, productoID uuid.UUID, cantidad int) error
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) ReservarYDescontarTx(tx *gorm.DB, tenantID uuid.UUID, r Reserva, referencia string, ventaID uuid.UUID) error {
	stockNuevo, err := s.productoRepo.DescontarStockTx(tx, tenantID, r.ProductoID, r.Cantidad)
	if errors.Is(err, repository.ErrStockInsuficiente) {
		return apierror.InsufficientStock(r.ProductoID, r.Nombre)
	}
	if err != nil {
		return fmt.Errorf("descontar stock de %s: %w", r.ProductoID, err)
	}

	mov := &model.MovimientoStock{
		TenantID:      tenantID,
		ProductoID:    r.ProductoID,
		Cantidad:      -r.Cantidad,
		StockAnterior: stockNuevo + r.Cantidad,
		StockNuevo:    stockNuevo,
		Motivo:        referencia,
		ReferenciaID:  &ventaID,
	}
	if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
		return fmt.Errorf("registrar movimiento de stock: %w", err)
	}
	return nil
}

func (s *inventarioService) RestaurarTx(tx *gorm.DB, tenantID, productoID uuid.UUID, cantidad int) error {
	_, err := s.productoRepo.RestaurarStockTx(tx, tenantID, productoID, cantidad)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("producto_id", productoID.String()).Int("cantidad", cantidad).
			Msg("inventario: producto inexistente al restaurar stock, se omite")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restaurar stock de %s: %w", productoID, err)
	}
	return nil
}

func (s *inventarioService) EliminarMovimientosTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error) {
	n, err := s.movimientoRepo.DeleteByMotivoTx(tx, tenantID, referencia)
	if err != nil {
		return 0, fmt.Errorf("eliminar movimientos de stock: %w", err)
	}
	return n, nil
}

// RegistrarInventarioInicial loads opening stock for a product in its own transaction.
func (s *inventarioService) RegistrarInventarioInicial(ctx context.Context, tenantID, productoID uuid.UUID, cantidad int) error {
	if cantidad <= 0 {
		return apierror.Validation("la cantidad inicial debe ser mayor a cero")
	}
	return runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		stockNuevo, err := s.productoRepo.RestaurarStockTx(tx, tenantID, productoID, cantidad)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Producto", productoID)
		}
		if err != nil {
			return err
		}
		return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
			TenantID:      tenantID,
			ProductoID:    productoID,
			Cantidad:      cantidad,
			StockAnterior: stockNuevo - cantidad,
			StockNuevo:    stockNuevo,
			Motivo:        MotivoInventarioInicial,
		})
	})
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return s.movimientoRepo.List(ctx, filter)
}
