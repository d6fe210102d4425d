package router

import (
	"context"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/cache"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/config"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/handler"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/middleware"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/service"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, exposed so cmd/ and tests can reach
// the engine without going through HTTP.
type Services struct {
	Ventas     service.VentaService
	Caja       service.CajaService
	Inventario service.InventarioService
}

// NewServices wires Service ← Repository ← DB/Redis. rdb and auditCB may be
// nil: audit then goes straight to the database and settings are not cached.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, auditCB *infra.CircuitBreaker) Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	cuentaRepo := repository.NewCuentaCobrarRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	configuracionRepo := repository.NewConfiguracionRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Collaborators ────────────────────────────────────────────────────────
	var configuracion service.ConfiguracionReader = service.NewConfiguracionReader(configuracionRepo)
	if rdb != nil {
		configuracion = cache.NewConfiguracionCache(configuracion, rdb, cfg.SettingsCacheTTL())
	} else {
		configuracion = cache.NewNoop(configuracion)
	}

	var auditoria service.AuditSink = service.NewAuditoriaDirecta(auditoriaRepo)
	if rdb != nil && auditCB != nil && cfg.AuditAsync {
		auditoria = worker.NewDispatcher(rdb, auditCB, auditoriaRepo)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	cajaSvc := service.NewCajaService(cajaRepo)
	cuentasSvc := service.NewCuentaCobrarService(cuentaRepo)
	ventaSvc := service.NewVentaService(
		ventaRepo,
		clienteRepo,
		service.NewCatalogoReader(productoRepo),
		configuracion,
		inventarioSvc,
		cajaSvc,
		cuentasSvc,
		auditoria,
		service.Reintentos{
			MaxIntentos:     uint(max(cfg.SaleMaxRetries, 1)),
			InicialInterval: cfg.SaleRetryInitial(),
		},
	)

	return Services{Ventas: ventaSvc, Caja: cajaSvc, Inventario: inventarioSvc}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, auditCB *infra.CircuitBreaker) *gin.Engine {
	return NewWithServices(ctx, cfg, NewServices(cfg, db, rdb, auditCB), db, rdb, auditCB)
}

func NewWithServices(ctx context.Context, cfg *config.Config, svcs Services, db *gorm.DB, rdb *redis.Client, auditCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(1000, time.Minute) // 1000 req/min per IP
	limiter.StartPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Handler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewVentasHandler(svcs.Ventas)
	cajaH := handler.NewCajaHandler(svcs.Caja)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, auditCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador: declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.CrearVenta)
		v1.GET("/ventas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", middleware.RequireRole("supervisor", "administrador"), ventasH.EliminarVenta)

		caja := v1.Group("/caja", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.POST("/movimiento", cajaH.RegistrarMovimiento)
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
