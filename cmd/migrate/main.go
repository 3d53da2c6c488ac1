package main

import (
	mongoMigration "agendo/internal/migrations/mongo"
	"agendo/pkg/config"
	"context"
	"os"
	"time"
)

const (
	JobName = "mongo-migration"

	EnvSeedTenantID   = "SEED_TENANT_ID"
	EnvSeedTenantName = "SEED_TENANT_NAME"

	migrationTimeout = 120 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if tenantID := os.Getenv(EnvSeedTenantID); tenantID != "" {
		seed := mongoMigration.SeedConfig{
			TenantID:   tenantID,
			TenantName: os.Getenv(EnvSeedTenantName),
		}
		if err := mongoMigration.Seed(ctx, db, seed, cfg.Log); err != nil {
			cfg.Log.Fatal("Seeding failed", "tenant_id", tenantID, "error", err)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}
