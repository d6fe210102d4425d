// cmd/seed/main.go: Crea una tienda de demo con catálogo, stock inicial y un cliente.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/config"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/middleware"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := abrirDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate error")
	}

	ctx := context.Background()
	tenantID := uuid.New()
	usuarioID := uuid.New()

	if err := repository.NewConfiguracionRepository(db).Upsert(ctx, &model.ConfiguracionTienda{
		TenantID:          tenantID,
		TasaImpuesto:      decimal.RequireFromString("0.16"),
		CreditoHabilitado: true,
	}); err != nil {
		log.Fatal().Err(err).Msg("configuracion")
	}

	productoRepo := repository.NewProductoRepository(db)
	inventario := service.NewInventarioService(productoRepo, repository.NewMovimientoStockRepository(db))
	catalogo := []struct {
		barras, nombre, precio string
		stock                  int
	}{
		{"7501000000011", "Café molido 500g", "100.00", 20},
		{"7501000000028", "Azúcar 1kg", "35.50", 40},
		{"7501000000035", "Leche entera 1L", "28.90", 30},
	}
	for _, it := range catalogo {
		p := &model.Producto{
			TenantID:     tenantID,
			CodigoBarras: it.barras,
			Nombre:       it.nombre,
			PrecioCosto:  decimal.RequireFromString(it.precio).Mul(decimal.RequireFromString("0.6")).Round(2),
			PrecioVenta:  decimal.RequireFromString(it.precio),
		}
		if err := productoRepo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("producto", it.nombre).Msg("crear producto")
		}
		if err := inventario.RegistrarInventarioInicial(ctx, tenantID, p.ID, it.stock); err != nil {
			log.Fatal().Err(err).Str("producto", it.nombre).Msg("inventario inicial")
		}
		fmt.Printf("producto  %s  %s\n", p.ID, it.nombre)
	}

	cliente := &model.Cliente{TenantID: tenantID, Nombre: "Cliente Demo"}
	if err := repository.NewClienteRepository(db).Create(ctx, cliente); err != nil {
		log.Fatal().Err(err).Msg("crear cliente")
	}

	fmt.Printf("tienda    %s\nusuario   %s\ncliente   %s\n", tenantID, usuarioID, cliente.ID)
	if cfg.JWTSecret != "" {
		token, err := middleware.FirmarToken(cfg.JWTSecret, usuarioID, tenantID, "supervisor", 8*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("firmar token")
		}
		fmt.Printf("token     %s\n", token)
	}
}

func abrirDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return infra.NewSQLite(cfg.DatabaseURL)
	}
	return infra.NewDatabase(cfg.DatabaseURL)
}
