package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/harborhq/harbor-backend/internal/types"
  "github.com/harborhq/harbor-backend/internal/utils"
  "github.com/harborhq/harbor-backend/internal/logger"
)

type PostgresService struct {
  db *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "harbor", log)
  log.Debug("Environment variables loaded")

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
  }
  log.Info("uuid-ossp extension enabled")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Store{},
    &types.Product{},
    &types.ScanRun{},
    &types.CategoryScan{},
    &types.ProductVisibility{},
    &types.AICallLog{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  fks := []struct {
    name string
    stmt string
  }{
    {
      name: "fk_product_store_id",
      stmt: `
        ALTER TABLE "product"
        ADD CONSTRAINT "fk_product_store_id"
        FOREIGN KEY ("store_id")
        REFERENCES "store"("id")
        ON DELETE CASCADE
      `,
    },
    {
      name: "fk_category_scan_store_id",
      stmt: `
        ALTER TABLE "category_scan"
        ADD CONSTRAINT "fk_category_scan_store_id"
        FOREIGN KEY ("store_id")
        REFERENCES "store"("id")
        ON DELETE CASCADE
      `,
    },
    {
      name: "fk_product_visibility_scan_id",
      stmt: `
        ALTER TABLE "product_visibility"
        ADD CONSTRAINT "fk_product_visibility_scan_id"
        FOREIGN KEY ("scan_id")
        REFERENCES "category_scan"("id")
        ON DELETE CASCADE
      `,
    },
  }
  for _, fk := range fks {
    var exists bool
    if err := s.db.Raw(
      `SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, fk.name,
    ).Scan(&exists).Error; err != nil {
      return fmt.Errorf("Failed to check constraint %s: %w", fk.name, err)
    }
    if exists {
      continue
    }
    if err := s.db.Exec(fk.stmt).Error; err != nil {
      return fmt.Errorf("Failed to add %s: %w", fk.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
