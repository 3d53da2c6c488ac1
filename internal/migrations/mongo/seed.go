package mongo

import (
	catalogrepo "agendo/internal/catalog/repository"
	tenantsrepo "agendo/internal/tenants/repository"
	mongotx "agendo/pkg/db/mongo"
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SeedConfig struct {
	TenantID   string
	TenantName string
}

// DefaultServices is what a freshly seeded tenant can book.
var DefaultServices = []model.Service{
	{Name: "Consultation", DurationMin: 30, Price: 0, Active: true},
	{Name: "Standard appointment", DurationMin: 60, Price: 10000, Active: true},
}

// Seed registers the tenant and, if its catalog is empty, the default
// services. There is no caller here, so the tenant is named explicitly
// through the system scope.
func Seed(ctx context.Context, db *mongo.Database, cfg SeedConfig, log *logger.Logger) error {
	scope, err := seedScope(cfg)
	if err != nil {
		return err
	}

	name := cfg.TenantName
	if name == "" {
		name = scope.TenantID()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err = db.Collection(tenantsrepo.CollectionName).UpdateOne(ctx,
		bson.M{"_id": scope.TenantID()},
		bson.M{
			"$set":         bson.M{"name": name, "active": true},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tenant: %w", err)
	}
	log.Info("Seeded tenant", "tenant_id", scope.TenantID(), "name", name)

	services, err := mongotx.NewScopedCollection(db.Collection(catalogrepo.CollectionName), scope)
	if err != nil {
		return err
	}
	count, err := services.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count services: %w", err)
	}
	if count > 0 {
		log.Info("Tenant catalog already populated, skipping services", "tenant_id", scope.TenantID(), "count", count)
		return nil
	}

	for _, def := range DefaultServices {
		svc := def
		svc.CreatedAt = now
		if _, err := services.InsertOne(ctx, &svc); err != nil {
			return fmt.Errorf("failed to seed service %q: %w", svc.Name, err)
		}
	}
	log.Info("Seeded services", "tenant_id", scope.TenantID(), "count", len(DefaultServices))
	return nil
}

// seedScope resolves the seed tenant through the system pathway; there is no
// caller tenant to take precedence.
func seedScope(cfg SeedConfig) (tenant.Scope, error) {
	scope, err := tenant.ResolveScope("", cfg.TenantID, true)
	if err != nil {
		return tenant.Scope{}, fmt.Errorf("invalid seed tenant: %w", err)
	}
	return scope, nil
}
