package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubAuditSink struct {
	mu      sync.Mutex
	entries []model.Auditoria
	err     error
}

var _ AuditSink = (*stubAuditSink)(nil)

func (s *stubAuditSink) Registrar(_ context.Context, entry model.Auditoria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAuditSink) eventos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Evento
	}
	return out
}

// ── Fixture ───────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewSQLite(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	tenantID  uuid.UUID
	usuarioID uuid.UUID

	productos   repository.ProductoRepository
	movStock    repository.MovimientoStockRepository
	ventas      repository.VentaRepository
	cajaRepo    repository.CajaRepository
	cuentasRepo repository.CuentaCobrarRepository
	clientes    repository.ClienteRepository
	config      repository.ConfiguracionRepository

	catalogo   CatalogoReader
	inventario InventarioService
	caja       CajaService
	cuentas    CuentaCobrarService
	audit      *stubAuditSink
	svc        VentaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureDB(t, newTestDB(t))
}

// newFixtureDB builds the fixture over an already migrated database.
func newFixtureDB(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		db:          db,
		tenantID:    uuid.New(),
		usuarioID:   uuid.New(),
		productos:   repository.NewProductoRepository(db),
		movStock:    repository.NewMovimientoStockRepository(db),
		ventas:      repository.NewVentaRepository(db),
		cajaRepo:    repository.NewCajaRepository(db),
		cuentasRepo: repository.NewCuentaCobrarRepository(db),
		clientes:    repository.NewClienteRepository(db),
		config:      repository.NewConfiguracionRepository(db),
		audit:       &stubAuditSink{},
	}
	f.catalogo = NewCatalogoReader(f.productos)
	f.inventario = NewInventarioService(f.productos, f.movStock)
	f.caja = NewCajaService(f.cajaRepo)
	f.cuentas = NewCuentaCobrarService(f.cuentasRepo)
	f.svc = f.build(f.catalogo)

	f.configurar(t, f.tenantID, "0.16", true)
	return f
}

// build wires a VentaService over the fixture, with a replaceable catalog.
func (f *fixture) build(catalogo CatalogoReader) VentaService {
	return NewVentaService(
		f.ventas,
		f.clientes,
		catalogo,
		NewConfiguracionReader(f.config),
		f.inventario,
		f.caja,
		f.cuentas,
		f.audit,
		Reintentos{MaxIntentos: 3, InicialInterval: 0},
	)
}

func (f *fixture) configurar(t *testing.T, tenantID uuid.UUID, tasa string, credito bool) {
	t.Helper()
	require.NoError(t, f.config.Upsert(context.Background(), &model.ConfiguracionTienda{
		TenantID:          tenantID,
		TasaImpuesto:      dec(tasa),
		CreditoHabilitado: credito,
	}))
}

func (f *fixture) producto(t *testing.T, tenantID uuid.UUID, nombre, precio string, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{
		TenantID:     tenantID,
		CodigoBarras: uuid.NewString()[:13],
		Nombre:       nombre,
		PrecioCosto:  dec(precio),
		PrecioVenta:  dec(precio),
		Activo:       true,
	}
	require.NoError(t, f.productos.Create(context.Background(), p))
	if stock > 0 {
		require.NoError(t, f.inventario.RegistrarInventarioInicial(context.Background(), tenantID, p.ID, stock))
	}
	return p
}

func (f *fixture) cliente(t *testing.T, tenantID uuid.UUID) *model.Cliente {
	t.Helper()
	c := &model.Cliente{TenantID: tenantID, Nombre: "Cliente Test"}
	require.NoError(t, f.clientes.Create(context.Background(), c))
	return c
}

func (f *fixture) abrirCaja(t *testing.T) *model.SesionCaja {
	t.Helper()
	s := &model.SesionCaja{TenantID: f.tenantID, UsuarioID: f.usuarioID, MontoInicial: dec("100")}
	require.NoError(t, f.cajaRepo.CreateSesion(context.Background(), s))
	return s
}

func (f *fixture) stock(t *testing.T, tenantID, id uuid.UUID) int {
	t.Helper()
	p, err := f.productos.FindByID(context.Background(), tenantID, id)
	require.NoError(t, err)
	return p.StockActual
}

func (f *fixture) contar(t *testing.T, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Where(where, args...).Count(&n).Error)
	return n
}
