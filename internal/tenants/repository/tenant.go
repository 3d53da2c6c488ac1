package repository

import (
	tenantserrors "agendo/internal/tenants/errors"
	"agendo/pkg/config"
	mongotx "agendo/pkg/db/mongo"
	"agendo/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Tenants"

// TenantRepository works on the tenant registry itself, which is not
// tenant-owned data and therefore not scoped.
type TenantRepository interface {
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	// Upsert creates the tenant or refreshes its name and active flag.
	Upsert(ctx context.Context, t *model.Tenant) error
}

type mongoTenantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTenantRepository(cfg *config.Config) TenantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTenantRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var t model.Tenant
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	return &t, nil
}

func (r *mongoTenantRepository) Upsert(ctx context.Context, t *model.Tenant) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set":         bson.M{"name": t.Name, "active": t.Active},
		"$setOnInsert": bson.M{"created_at": now},
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": t.ID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert tenant: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	return nil
}
