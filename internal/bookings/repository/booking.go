package repository

import (
	bookingserrors "agendo/internal/bookings/errors"
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
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// BookingRepository reads and writes bookings of a single tenant per call.
type BookingRepository interface {
	Create(ctx context.Context, scope tenant.Scope, booking *model.Booking) error
	FindByID(ctx context.Context, scope tenant.Scope, id string) (*model.Booking, error)
	Update(ctx context.Context, scope tenant.Scope, booking *model.Booking) error
	UpdateStatus(ctx context.Context, scope tenant.Scope, id string, from, to model.BookingStatus) error
	FindOverlapping(ctx context.Context, scope tenant.Scope, resource model.Resource, start, end time.Time, excludeID string) ([]*model.Booking, error)
	Search(ctx context.Context, scope tenant.Scope, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, scope tenant.Scope, filter model.BookingFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) scoped(scope tenant.Scope) (*mongotx.ScopedCollection, error) {
	return mongotx.NewScopedCollection(r.collection, scope)
}

func (r *mongoBookingRepository) Create(ctx context.Context, scope tenant.Scope, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := coll.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, scope tenant.Scope, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = coll.FindOne(ctx, bson.M{"_id": objectID}, &booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// Update writes the schedulable fields of booking. tenant_id, status and
// created_at are never touched here.
func (r *mongoBookingRepository) Update(ctx context.Context, scope tenant.Scope, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return err
	}

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"customer_id": booking.CustomerID,
		"service_id":  booking.ServiceID,
		"start_time":  booking.StartTime,
		"end_time":    booking.EndTime,
		"price":       booking.Price,
		"notes":       booking.Notes,
		"updated_at":  booking.UpdatedAt,
	}
	unset := bson.M{}
	setOrUnset(set, unset, "professional_id", booking.ProfessionalID)
	setOrUnset(set, unset, "user_id", booking.UserID)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func setOrUnset(set, unset bson.M, field, value string) {
	if value == "" {
		unset[field] = ""
		return
	}
	set[field] = value
}

// UpdateStatus is a compare-and-set on status: it only matches while the
// stored status is still from.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, scope tenant.Scope, id string, from, to model.BookingStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := coll.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, scope, id); findErr != nil {
			return findErr
		}
		return bookingserrors.ErrInvalidTransition
	}
	return nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, scope tenant.Scope, resource model.Resource, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return nil, err
	}

	filter, err := buildOverlapFilter(resource, start, end, excludeID)
	if err != nil {
		return nil, err
	}

	var bookings []*model.Booking
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	if err := coll.Find(ctx, filter, &bookings, opts); err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return bookings, nil
}

// buildOverlapFilter matches non-cancelled bookings on the same resource
// whose [start_time, end_time) intersects [start, end).
func buildOverlapFilter(resource model.Resource, start, end time.Time, excludeID string) (bson.M, error) {
	filter := bson.M{
		resource.Field(): resource.ID,
		"status":         bson.M{"$ne": model.StatusCancelled},
		"start_time":     bson.M{"$lt": end},
		"end_time":       bson.M{"$gt": start},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}
	return filter, nil
}

func (r *mongoBookingRepository) Search(ctx context.Context, scope tenant.Scope, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	bookings := []*model.Booking{}
	if err := coll.Find(ctx, buildSearchFilter(filter), &bookings, opts); err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, scope tenant.Scope, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, err := r.scoped(scope)
	if err != nil {
		return 0, err
	}

	count, err := coll.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func buildSearchFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.ProfessionalID != "" {
		filter["professional_id"] = f.ProfessionalID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.To != nil {
		filter["start_time"] = bson.M{"$lt": *f.To}
	}
	if f.From != nil {
		filter["end_time"] = bson.M{"$gt": *f.From}
	}
	return filter
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
