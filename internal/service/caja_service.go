package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/dto"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errSesionAbierta = errors.New("ya existe una sesión de caja abierta para este usuario")

type CajaService interface {
	Abrir(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.MovimientoManualRequest) error

	// RegistrarTx appends a movement to the user's open session inside a sale
	// transaction. Without an open session it is a silent no-op and returns false.
	RegistrarTx(tx *gorm.DB, usuarioID, tenantID uuid.UUID, tipo, metodo, referencia string, monto decimal.Decimal) (bool, error)
	// RevertirTx deletes every movement carrying referencia, open session or not.
	RevertirTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// At most one open session per (usuario, tenant).

func (s *cajaService) Abrir(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, apierror.Validation("el monto inicial no puede ser negativo")
	}
	existing, err := s.repo.FindSesionAbierta(ctx, usuarioID, tenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apierror.Error{Kind: apierror.KindValidation, EntityID: existing.ID.String(), Detail: errSesionAbierta.Error(), Err: errSesionAbierta}
	}

	sesion := &model.SesionCaja{
		TenantID:     tenantID,
		UsuarioID:    usuarioID,
		MontoInicial: req.MontoInicial.Round(2),
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}
	log.Info().Str("sesion_id", sesion.ID.String()).Str("usuario_id", usuarioID.String()).Msg("caja abierta")
	return buildSesionResponse(sesion, sesion.MontoInicial), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Blind count: the deviation is computed after the declaration is received.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionAbierta(ctx, usuarioID, tenantID)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, apierror.NotFound("Sesión de caja abierta del usuario", usuarioID)
	}

	esperado, err := s.montoEsperado(ctx, sesion)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sesion.ClosedAt = &now
	sesion.MontoCierre = &esperado
	if err := s.repo.UpdateSesion(ctx, sesion); err != nil {
		return nil, err
	}

	resp := buildSesionResponse(sesion, esperado)
	if req.MontoDeclarado != nil {
		declarado := req.MontoDeclarado.Round(2)
		desvio := declarado.Sub(esperado)
		pct := decimal.Zero
		if !esperado.IsZero() {
			pct = desvio.Div(esperado).Mul(decimal.NewFromInt(100)).Round(2)
		}
		resp.MontoDeclarado = &declarado
		resp.Desvio = &dto.DesvioResponse{
			Monto:         desvio,
			Porcentaje:    pct,
			Clasificacion: clasificarDesvio(pct),
		}
	}
	log.Info().Str("sesion_id", sesion.ID.String()).Str("monto_cierre", esperado.StringFixed(2)).Msg("caja cerrada")
	return resp, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual deposit / withdraw. Movements are immutable: no Update.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID, tenantID uuid.UUID, req dto.MovimientoManualRequest) error {
	if !req.Monto.IsPositive() {
		return apierror.Validation("el monto debe ser mayor a cero")
	}
	sesion, err := s.repo.FindSesionAbierta(ctx, usuarioID, tenantID)
	if err != nil {
		return err
	}
	if sesion == nil {
		return apierror.NotFound("Sesión de caja abierta del usuario", usuarioID)
	}

	monto := req.Monto.Round(2)
	switch req.Tipo {
	case model.MovimientoCajaDeposito:
	case model.MovimientoCajaRetiro:
		monto = monto.Neg()
	default:
		return apierror.Validation("tipo de movimiento inválido: %q", req.Tipo)
	}
	return s.repo.CreateMovimiento(ctx, &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		Tipo:         req.Tipo,
		Monto:        monto,
		Referencia:   req.Referencia,
	})
}

// ── Ledger operations (inside a sale transaction) ─────────────────────────────

func (s *cajaService) RegistrarTx(tx *gorm.DB, usuarioID, tenantID uuid.UUID, tipo, metodo, referencia string, monto decimal.Decimal) (bool, error) {
	sesion, err := s.repo.FindSesionAbiertaTx(tx, usuarioID, tenantID)
	if err != nil {
		return false, fmt.Errorf("buscar sesión de caja: %w", err)
	}
	if sesion == nil {
		return false, nil
	}
	mov := &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		Tipo:         tipo,
		Monto:        monto,
		Referencia:   referencia,
	}
	if metodo != "" {
		mov.MetodoPago = &metodo
	}
	if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
		return false, fmt.Errorf("registrar movimiento de caja: %w", err)
	}
	return true, nil
}

func (s *cajaService) RevertirTx(tx *gorm.DB, tenantID uuid.UUID, referencia string) (int64, error) {
	n, err := s.repo.DeleteMovimientosByReferenciaTx(tx, tenantID, referencia)
	if err != nil {
		return 0, fmt.Errorf("revertir movimientos de caja: %w", err)
	}
	return n, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// montoEsperado = monto inicial + Σ signed movements of the session.
func (s *cajaService) montoEsperado(ctx context.Context, sesion *model.SesionCaja) (decimal.Decimal, error) {
	movs, err := s.repo.ListMovimientos(ctx, sesion.ID)
	if err != nil {
		return decimal.Zero, err
	}
	total := sesion.MontoInicial
	for _, m := range movs {
		total = total.Add(m.Monto)
	}
	return total, nil
}

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	one := decimal.NewFromInt(1)
	five := decimal.NewFromInt(5)
	switch {
	case abs.LessThanOrEqual(one):
		return "normal"
	case abs.LessThanOrEqual(five):
		return "advertencia"
	default:
		return "critico"
	}
}

func buildSesionResponse(sesion *model.SesionCaja, esperado decimal.Decimal) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:            sesion.ID.String(),
		UsuarioID:     sesion.UsuarioID.String(),
		MontoInicial:  sesion.MontoInicial,
		MontoEsperado: esperado,
		MontoCierre:   sesion.MontoCierre,
		Abierta:       sesion.Abierta(),
		OpenedAt:      sesion.OpenedAt.Format("2006-01-02T15:04:05Z"),
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	return resp
}
