package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/dto"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VentaService interface {
	CrearVenta(ctx context.Context, tenantID, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	// EliminarVentaConReversion returns false when the sale does not exist in
	// the tenant, whether it is missing or belongs to another tenant.
	EliminarVentaConReversion(ctx context.Context, ventaID, usuarioID, tenantID uuid.UUID) (bool, error)
	ObtenerVenta(ctx context.Context, tenantID, ventaID uuid.UUID) (*dto.VentaResponse, error)
}

// Reintentos bounds the retry of lock-class failures. Business failures are
// never retried.
type Reintentos struct {
	MaxIntentos     uint
	InicialInterval time.Duration
}

func DefaultReintentos() Reintentos {
	return Reintentos{MaxIntentos: 3, InicialInterval: 50 * time.Millisecond}
}

type ventaService struct {
	repo          repository.VentaRepository
	clienteRepo   repository.ClienteRepository
	catalogo      CatalogoReader
	configuracion ConfiguracionReader
	inventario    InventarioService
	caja          CajaService
	cuentas       CuentaCobrarService
	auditoria     AuditSink
	reintentos    Reintentos
}

func NewVentaService(
	repo repository.VentaRepository,
	clienteRepo repository.ClienteRepository,
	catalogo CatalogoReader,
	configuracion ConfiguracionReader,
	inventario InventarioService,
	caja CajaService,
	cuentas CuentaCobrarService,
	auditoria AuditSink,
	reintentos Reintentos,
) VentaService {
	if reintentos.MaxIntentos == 0 {
		reintentos = DefaultReintentos()
	}
	return &ventaService{
		repo:          repo,
		clienteRepo:   clienteRepo,
		catalogo:      catalogo,
		configuracion: configuracion,
		inventario:    inventario,
		caja:          caja,
		cuentas:       cuentas,
		auditoria:     auditoria,
		reintentos:    reintentos,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// conReintentos runs op, retrying only ConcurrencyError with exponential backoff.
func conReintentos[T any](ctx context.Context, cfg Reintentos, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InicialInterval
	intento := 0
	return backoff.Retry(ctx, func() (T, error) {
		intento++
		res, err := op()
		if err == nil {
			return res, nil
		}
		if apierror.IsConcurrency(err) {
			log.Warn().Err(err).Int("intento", intento).Msg("venta: conflicto de concurrencia, reintentando")
			return res, apierror.Concurrency(err)
		}
		return res, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(cfg.MaxIntentos))
}

// ── Estados ───────────────────────────────────────────────────────────────────

type estadoVenta string

const (
	estadoValidando    estadoVenta = "Validating"
	estadoReservando   estadoVenta = "Reserving"
	estadoPersistiendo estadoVenta = "Persisting"
	estadoAuditando    estadoVenta = "AuditingBestEffort"
	estadoConfirmada   estadoVenta = "Committed"
	estadoAbortada     estadoVenta = "Aborted"
)

func transicion(op string, id uuid.UUID, e estadoVenta) {
	log.Debug().Str("op", op).Str("venta_id", id.String()).Str("estado", string(e)).Msg("venta: transición")
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
// Validating: parse + catalog snapshot + pricing + payment split (no writes)
// Reserving:  conditional decrement + stock movement per line
// Persisting: venta/items/pagos, receivable, cash movement: same TX
// AuditingBestEffort: after COMMIT, failures logged and swallowed

func (s *ventaService) CrearVenta(ctx context.Context, tenantID, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	ventaID := uuid.New()
	transicion("crear", ventaID, estadoValidando)

	plan, err := s.planificar(ctx, tenantID, req)
	if err != nil {
		transicion("crear", ventaID, estadoAbortada)
		return nil, err
	}

	venta, err := conReintentos(ctx, s.reintentos, func() (*model.Venta, error) {
		return s.persistirVenta(ctx, tenantID, usuarioID, ventaID, plan)
	})
	if err != nil {
		transicion("crear", ventaID, estadoAbortada)
		return nil, err
	}

	transicion("crear", venta.ID, estadoAuditando)
	s.auditar(ctx, model.EventoVentaCreada, tenantID, usuarioID, venta.ID, map[string]any{
		"total":       venta.Total.StringFixed(2),
		"metodo_pago": venta.MetodoPago,
		"items":       len(venta.Items),
	})

	transicion("crear", venta.ID, estadoConfirmada)
	log.Info().Str("venta_id", venta.ID.String()).Str("tenant_id", tenantID.String()).
		Str("total", venta.Total.StringFixed(2)).Msg("venta registrada")

	return ventaToResponse(venta, plan.cliente, plan.nombres(), plan.pagos.Vuelto), nil
}

// planVenta is everything computed before the transaction opens.
type planVenta struct {
	cliente *model.Cliente
	totales Totales
	pagos   ResultadoPagos
}

func (p *planVenta) nombres() map[uuid.UUID]string {
	m := make(map[uuid.UUID]string, len(p.totales.Lineas))
	for _, l := range p.totales.Lineas {
		m[l.ProductoID] = l.Nombre
	}
	return m
}

func (s *ventaService) planificar(ctx context.Context, tenantID uuid.UUID, req dto.CrearVentaRequest) (*planVenta, error) {
	lineas, err := parseLineas(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Descuento.IsNegative() {
		return nil, apierror.Validation("el descuento no puede ser negativo")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := s.configuracion.Obtener(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	plan := &planVenta{}
	if req.ClienteID != nil && *req.ClienteID != "" {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.Validation("cliente_id inválido")
		}
		cliente, err := s.clienteRepo.FindByID(ctx, tenantID, cid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Cliente", cid)
		}
		if err != nil {
			return nil, err
		}
		plan.cliente = cliente
	}

	ids := make([]uuid.UUID, len(lineas))
	for i, l := range lineas {
		ids[i] = l.ProductoID
	}
	snapshot, err := s.catalogo.Snapshot(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	plan.totales, err = CalcularTotales(lineas, snapshot, cfg.TasaImpuesto, req.Descuento)
	if err != nil {
		return nil, err
	}

	// Pre-flight stock check against the snapshot. The conditional decrement
	// inside the transaction is what actually guards the stock.
	pedidos := make(map[uuid.UUID]int, len(lineas))
	for _, l := range lineas {
		pedidos[l.ProductoID] += l.Cantidad
	}
	for id, cantidad := range pedidos {
		if p := snapshot[id]; p.Stock < cantidad {
			return nil, apierror.InsufficientStock(id, p.Nombre)
		}
	}

	tenders := tendersDesdeRequest(req, plan.totales.Total)
	if plan.totales.Total.IsZero() && len(req.Pagos) == 0 {
		if !metodosValidos[tenders[0].Metodo] {
			return nil, apierror.Validation("método de pago desconocido: %q", tenders[0].Metodo)
		}
		plan.pagos = ResultadoPagos{Pagos: tenders, Vuelto: decimal.Zero}
		return plan, nil
	}
	plan.pagos, err = DividirPagos(plan.totales.Total, tenders, plan.cliente != nil, cfg.CreditoHabilitado)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *ventaService) persistirVenta(ctx context.Context, tenantID, usuarioID, ventaID uuid.UUID, plan *planVenta) (*model.Venta, error) {
	venta := buildVenta(tenantID, usuarioID, ventaID, plan)
	referencia := venta.Referencia()

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		transicion("crear", ventaID, estadoReservando)
		for _, l := range plan.totales.Lineas {
			r := Reserva{ProductoID: l.ProductoID, Nombre: l.Nombre, Cantidad: l.Cantidad}
			if err := s.inventario.ReservarYDescontarTx(tx, tenantID, r, referencia, ventaID); err != nil {
				return err
			}
		}

		transicion("crear", ventaID, estadoPersistiendo)
		if err := verificarInvariantes(venta); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, venta); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		if credito := plan.pagos.Credito(); credito.IsPositive() {
			if err := s.cuentas.AbrirTx(tx, tenantID, *venta.ClienteID, ventaID, credito); err != nil {
				return err
			}
		}
		if efectivo := plan.pagos.Efectivo(); efectivo.IsPositive() {
			registrado, err := s.caja.RegistrarTx(tx, usuarioID, tenantID, model.MovimientoCajaVenta, model.MetodoEfectivo, referencia, efectivo)
			if err != nil {
				return err
			}
			if !registrado {
				log.Debug().Str("venta_id", ventaID.String()).Msg("venta: sin sesión de caja abierta, no se registra movimiento")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return venta, nil
}

// verificarInvariantes re-checks the money identities right before the sale row is written.
func verificarInvariantes(v *model.Venta) error {
	if !v.Total.Equal(v.Subtotal.Add(v.Impuesto).Sub(v.Descuento)) {
		return fmt.Errorf("invariante violada: total %s != subtotal %s + impuesto %s - descuento %s",
			v.Total, v.Subtotal, v.Impuesto, v.Descuento)
	}
	suma := decimal.Zero
	for _, p := range v.Pagos {
		suma = suma.Add(p.Monto)
	}
	if suma.Sub(v.Total).Abs().GreaterThan(toleranciaPagos) {
		return fmt.Errorf("invariante violada: pagos %s != total %s", suma, v.Total)
	}
	return nil
}

// ── EliminarVentaConReversion ─────────────────────────────────────────────────
// Mirror of CrearVenta in one TX: restore stock, drop stock movements, cash
// movements and receivables by reference, delete the sale (items + pagos).

func (s *ventaService) EliminarVentaConReversion(ctx context.Context, ventaID, usuarioID, tenantID uuid.UUID) (bool, error) {
	if tenantID == uuid.Nil {
		return false, nil
	}
	transicion("revertir", ventaID, estadoValidando)

	venta, err := conReintentos(ctx, s.reintentos, func() (*model.Venta, error) {
		return s.revertirVenta(ctx, ventaID, tenantID)
	})
	if err != nil {
		transicion("revertir", ventaID, estadoAbortada)
		return false, err
	}
	if venta == nil {
		transicion("revertir", ventaID, estadoAbortada)
		return false, nil
	}

	transicion("revertir", ventaID, estadoAuditando)
	s.auditar(ctx, model.EventoVentaRevertida, tenantID, usuarioID, ventaID, map[string]any{
		"total": venta.Total.StringFixed(2),
		"items": len(venta.Items),
	})
	transicion("revertir", ventaID, estadoConfirmada)
	log.Info().Str("venta_id", ventaID.String()).Str("tenant_id", tenantID.String()).Msg("venta revertida")
	return true, nil
}

// revertirVenta returns (nil, nil) when there is nothing to reverse in the tenant.
func (s *ventaService) revertirVenta(ctx context.Context, ventaID, tenantID uuid.UUID) (*model.Venta, error) {
	var venta *model.Venta
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDTx(tx, ventaID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if v.TenantID != tenantID {
			log.Warn().Str("venta_id", ventaID.String()).Str("tenant_id", tenantID.String()).
				Msg("venta: reversión solicitada desde otra tienda, se trata como inexistente")
			return nil
		}

		transicion("revertir", ventaID, estadoReservando)
		for _, item := range v.Items {
			if err := s.inventario.RestaurarTx(tx, tenantID, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
		}

		transicion("revertir", ventaID, estadoPersistiendo)
		referencia := v.Referencia()
		if _, err := s.inventario.EliminarMovimientosTx(tx, tenantID, referencia); err != nil {
			return err
		}
		if _, err := s.caja.RevertirTx(tx, tenantID, referencia); err != nil {
			return err
		}
		if _, err := s.cuentas.EliminarPorVentaTx(tx, tenantID, ventaID); err != nil {
			return err
		}
		if err := s.repo.DeleteTx(tx, ventaID); err != nil {
			return fmt.Errorf("eliminar venta: %w", err)
		}
		venta = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return venta, nil
}

// ── ObtenerVenta ──────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, tenantID, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, tenantID, ventaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("Venta", ventaID)
	}
	if err != nil {
		return nil, err
	}
	nombres := make(map[uuid.UUID]string, len(v.Items))
	for _, it := range v.Items {
		if it.Producto != nil {
			nombres[it.ProductoID] = it.Producto.Nombre
		}
	}
	return ventaToResponse(v, v.Cliente, nombres, decimal.Zero), nil
}

// ── Auditoría ─────────────────────────────────────────────────────────────────

// auditar is fire-and-forget. It runs after COMMIT on a context detached from
// the request's cancellation.
func (s *ventaService) auditar(ctx context.Context, evento string, tenantID, usuarioID, ventaID uuid.UUID, payload map[string]any) {
	if s.auditoria == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("evento", evento).Msg("auditoría: payload inválido")
		return
	}
	entry := model.Auditoria{
		TenantID:  tenantID,
		Evento:    evento,
		UsuarioID: usuarioID,
		RefTipo:   "venta",
		RefID:     ventaID,
		Payload:   datatypes.JSON(raw),
	}
	if err := s.auditoria.Registrar(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).Str("evento", evento).Str("venta_id", ventaID.String()).
			Msg("auditoría: no se pudo registrar, se descarta")
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseLineas(items []dto.ItemVentaRequest) ([]LineaVenta, error) {
	if len(items) == 0 {
		return nil, apierror.Validation("la venta debe tener al menos un item")
	}
	lineas := make([]LineaVenta, 0, len(items))
	for _, it := range items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, apierror.Validation("producto_id inválido: %q", it.ProductoID)
		}
		if it.Cantidad <= 0 {
			return nil, apierror.Validation("la cantidad debe ser mayor a cero")
		}
		lineas = append(lineas, LineaVenta{ProductoID: pid, Cantidad: it.Cantidad, PrecioUnitario: it.PrecioUnitario})
	}
	return lineas, nil
}

// tendersDesdeRequest falls back to a single tender of the whole total with
// MetodoPago (cash by default) when no payments were sent.
func tendersDesdeRequest(req dto.CrearVentaRequest, total decimal.Decimal) []Tender {
	if len(req.Pagos) == 0 {
		metodo := req.MetodoPago
		if metodo == "" {
			metodo = model.MetodoEfectivo
		}
		return []Tender{{Metodo: metodo, Monto: total}}
	}
	tenders := make([]Tender, len(req.Pagos))
	for i, p := range req.Pagos {
		tenders[i] = Tender{Metodo: p.Metodo, Monto: p.Monto}
	}
	return tenders
}

func buildVenta(tenantID, usuarioID, ventaID uuid.UUID, plan *planVenta) *model.Venta {
	t := plan.totales
	venta := &model.Venta{
		ID:         ventaID,
		TenantID:   tenantID,
		UsuarioID:  usuarioID,
		Subtotal:   t.Subtotal,
		Impuesto:   t.Impuesto,
		Descuento:  t.Descuento,
		Total:      t.Total,
		MetodoPago: plan.pagos.MetodoDominante(),
	}
	if plan.cliente != nil {
		venta.ClienteID = &plan.cliente.ID
	}
	for _, l := range t.Lineas {
		venta.Items = append(venta.Items, model.VentaItem{
			VentaID:        ventaID,
			ProductoID:     l.ProductoID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			TotalLinea:     l.TotalLinea,
			TasaImpuesto:   l.TasaImpuesto,
			Impuesto:       l.Impuesto,
		})
	}
	for _, p := range plan.pagos.Pagos {
		venta.Pagos = append(venta.Pagos, model.VentaPago{
			VentaID:   ventaID,
			Metodo:    p.Metodo,
			Monto:     p.Monto,
			UsuarioID: usuarioID,
		})
	}
	return venta
}

func ventaToResponse(v *model.Venta, cliente *model.Cliente, nombres map[uuid.UUID]string, vuelto decimal.Decimal) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       nombres[it.ProductoID],
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			TotalLinea:     it.TotalLinea,
			TasaImpuesto:   it.TasaImpuesto,
			Impuesto:       it.Impuesto,
		}
	}
	pagos := make([]dto.PagoRequest, len(v.Pagos))
	for i, p := range v.Pagos {
		pagos[i] = dto.PagoRequest{Metodo: p.Metodo, Monto: p.Monto}
	}
	resp := &dto.VentaResponse{
		ID:         v.ID.String(),
		UsuarioID:  v.UsuarioID.String(),
		Items:      items,
		Subtotal:   v.Subtotal,
		Impuesto:   v.Impuesto,
		Descuento:  v.Descuento,
		Total:      v.Total,
		MetodoPago: v.MetodoPago,
		Pagos:      pagos,
		Vuelto:     vuelto,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
	}
	if cliente != nil {
		resp.Cliente = &dto.ClienteResponse{
			ID:       cliente.ID.String(),
			Nombre:   cliente.Nombre,
			Email:    cliente.Email,
			Telefono: cliente.Telefono,
		}
	}
	return resp
}
