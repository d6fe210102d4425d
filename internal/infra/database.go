package infra

import (
	"fmt"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection to Postgres backed by pgx.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// NewSQLite opens a file-backed SQLite database for local runs and tests.
// Writers take the lock at BEGIN (_txlock=immediate) and wait on contention
// instead of failing, so concurrent sales serialize like row locks would.
func NewSQLite(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1&_journal_mode=WAL", path)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// Migrate creates or updates every table the sale engine touches, then
// applies the DDL that GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ConfiguracionTienda{},
		&model.Cliente{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaPago{},
		&model.CuentaPorCobrar{},
		&model.Auditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements valid on both Postgres and
// SQLite. Each uses IF NOT EXISTS so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// at most one open cash session per (usuario, tenant)
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sesion_abierta_unica
		    ON sesiones_caja (usuario_id, tenant_id)
		    WHERE closed_at IS NULL`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
