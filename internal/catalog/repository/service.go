package repository

import (
	catalogerrors "agendo/internal/catalog/errors"
	"agendo/pkg/config"
	mongotx "agendo/pkg/db/mongo"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

type ServiceRepository interface {
	Create(ctx context.Context, scope tenant.Scope, svc *model.Service) error
	FindByID(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error)
	FindAll(ctx context.Context, scope tenant.Scope, limit int, offset int64) ([]*model.Service, error)
	Count(ctx context.Context, scope tenant.Scope) (int64, error)
	Update(ctx context.Context, scope tenant.Scope, id string, svc *model.Service) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoServiceRepository) Create(ctx context.Context, scope tenant.Scope, svc *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return err
	}

	svc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := coll.InsertOne(ctx, svc)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		svc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var svc model.Service
	if err := coll.FindOne(ctx, bson.M{"_id": objectID}, &svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &svc, nil
}

func (r *mongoServiceRepository) FindAll(ctx context.Context, scope tenant.Scope, limit int, offset int64) ([]*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	services := []*model.Service{}
	if err := coll.Find(ctx, bson.M{}, &services, opts); err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	return services, nil
}

func (r *mongoServiceRepository) Count(ctx context.Context, scope tenant.Scope) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return 0, err
	}

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, scope tenant.Scope, id string, svc *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"name":         svc.Name,
		"duration_min": svc.DurationMin,
		"price":        svc.Price,
		"active":       svc.Active,
	}}
	result, err := coll.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.ErrNotFound
	}
	return nil
}
