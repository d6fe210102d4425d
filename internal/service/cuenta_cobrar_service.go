package service

import (
	"fmt"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentaCobrarService is the receivable ledger. A sale opens at most one
// receivable; installments are recorded elsewhere.
type CuentaCobrarService interface {
	AbrirTx(tx *gorm.DB, tenantID, clienteID, ventaID uuid.UUID, monto decimal.Decimal) error
	EliminarPorVentaTx(tx *gorm.DB, tenantID, ventaID uuid.UUID) (int64, error)
}

type cuentaCobrarService struct {
	repo repository.CuentaCobrarRepository
}

func NewCuentaCobrarService(repo repository.CuentaCobrarRepository) CuentaCobrarService {
	return &cuentaCobrarService{repo: repo}
}

func (s *cuentaCobrarService) AbrirTx(tx *gorm.DB, tenantID, clienteID, ventaID uuid.UUID, monto decimal.Decimal) error {
	if clienteID == uuid.Nil {
		return apierror.CreditRequiresCustomer()
	}
	if !monto.IsPositive() {
		return apierror.Validation("el monto adeudado debe ser mayor a cero")
	}
	err := s.repo.CreateTx(tx, &model.CuentaPorCobrar{
		TenantID:      tenantID,
		ClienteID:     clienteID,
		VentaID:       ventaID,
		MontoAdeudado: monto,
		MontoPagado:   decimal.Zero,
		Estado:        model.CuentaAbierta,
	})
	if err != nil {
		return fmt.Errorf("abrir cuenta por cobrar: %w", err)
	}
	return nil
}

func (s *cuentaCobrarService) EliminarPorVentaTx(tx *gorm.DB, tenantID, ventaID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteByVentaTx(tx, tenantID, ventaID)
	if err != nil {
		return 0, fmt.Errorf("eliminar cuentas por cobrar: %w", err)
	}
	return n, nil
}
