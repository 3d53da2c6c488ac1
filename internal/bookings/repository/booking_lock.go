package repository

import (
	bookingserrors "agendo/internal/bookings/errors"
	"agendo/pkg/config"
	mongotx "agendo/pkg/db/mongo"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository hands out advisory locks, one per tenant resource.
// Every acquisition gets its own owner token; Renew and Release act only on
// the acquisition they were given.
type BookingLockRepository interface {
	Acquire(ctx context.Context, scope tenant.Scope, resource model.Resource, ttl time.Duration) (*model.BookingLock, error)
	// Renew must run inside the booking transaction. The write ties the lock
	// document to the transaction: a concurrent takeover either aborts it
	// with a write conflict or leaves nothing to match.
	Renew(ctx context.Context, scope tenant.Scope, lock *model.BookingLock, ttl time.Duration) error
	Release(ctx context.Context, scope tenant.Scope, lock *model.BookingLock) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

func LockID(scope tenant.Scope, resource model.Resource) string {
	return fmt.Sprintf("booking_lock:%s:%s:%s", scope.TenantID(), resource.Kind, resource.ID)
}

// Acquire inserts the lock document; the unique _id makes a concurrent
// holder surface as a duplicate key. A lock whose TTL already passed but
// which the TTL monitor has not swept yet is reclaimed once.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, scope tenant.Scope, resource model.Resource, ttl time.Duration) (*model.BookingLock, error) {
	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return nil, err
	}

	lockID := LockID(scope, resource)
	insert := func() (*model.BookingLock, error) {
		now := time.Now().UTC()
		lock := &model.BookingLock{
			ID:        lockID,
			Owner:     uuid.NewString(),
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}
		if _, err := coll.InsertOne(ctx, lock); err != nil {
			return nil, err
		}
		return lock, nil
	}

	lock, err := insert()
	if err == nil {
		return lock, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim expired booking lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, bookingserrors.ErrLockHeld
	}

	lock, err = insert()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return lock, nil
}

func (r *mongoBookingLockRepository) Renew(ctx context.Context, scope tenant.Scope, lock *model.BookingLock, ttl time.Duration) error {
	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return err
	}

	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": lock.ID, "owner": lock.Owner},
		bson.M{"$set": bson.M{"expires_at": time.Now().UTC().Add(ttl)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return bookingserrors.ErrLockLost
	}
	return nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, scope tenant.Scope, lock *model.BookingLock) error {
	coll, err := mongotx.NewScopedCollection(r.collection, scope)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner})
	return err
}
