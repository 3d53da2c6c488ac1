package service

import (
	bookingserrors "agendo/internal/bookings/errors"
	"agendo/internal/bookings/repository"
	mongotx "agendo/pkg/db/mongo"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeBookingRepo keeps bookings in memory and applies the same tenant
// filtering the scoped Mongo collection does.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	txErr    error
	// txDelay widens the check-then-write window for race tests.
	txDelay time.Duration
	// beforeTx runs once, inside the next transaction, before the caller's work.
	beforeTx func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*model.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, scope tenant.Scope, booking *model.Booking) error {
	if err := scope.Stamp(booking); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, scope tenant.Scope, id string) (*model.Booking, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !scope.Owns(b) {
		return nil, bookingserrors.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, scope tenant.Scope, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[booking.ID]
	if !ok || !scope.Owns(b) {
		return bookingserrors.ErrNotFound
	}
	updated := *booking
	updated.TenantID = b.TenantID
	updated.Status = b.Status
	updated.CreatedAt = b.CreatedAt
	r.bookings[booking.ID] = &updated
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, scope tenant.Scope, id string, from, to model.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !scope.Owns(b) {
		return bookingserrors.ErrNotFound
	}
	if b.Status != from {
		return bookingserrors.ErrInvalidTransition
	}
	b.Status = to
	return nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, scope tenant.Scope, resource model.Resource, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if !scope.Owns(b) || b.ID == excludeID || b.Status == model.StatusCancelled {
			continue
		}
		if resource.Kind == model.ResourceProfessional && b.ProfessionalID != resource.ID {
			continue
		}
		if resource.Kind == model.ResourceUser && b.UserID != resource.ID {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) matching(scope tenant.Scope, f model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.bookings {
		if !scope.Owns(b) {
			continue
		}
		if f.ProfessionalID != "" && b.ProfessionalID != f.ProfessionalID {
			continue
		}
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	return out
}

func (r *fakeBookingRepo) Search(_ context.Context, scope tenant.Scope, f model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(scope, f)
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeBookingRepo) Count(_ context.Context, scope tenant.Scope, f model.BookingFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(scope, f))), nil
}

func (r *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if r.txErr != nil {
		return r.txErr
	}
	if r.txDelay > 0 {
		select {
		case <-time.After(r.txDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	hook := r.beforeTx
	r.beforeTx = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return fn(ctx)
}

func (r *fakeBookingRepo) setServiceID(id, serviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].ServiceID = serviceID
}

func (r *fakeBookingRepo) stored(id string) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := *r.bookings[id]
	return &b
}

// fakeLockRepo mirrors the Mongo lock: one document per resource, expiry
// against its clock, owner-bound renew and release.
type fakeLockRepo struct {
	mu       sync.Mutex
	held     map[string]model.BookingLock
	acquired int
	seq      int
	now      func() time.Time
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{held: map[string]model.BookingLock{}, now: time.Now}
}

func (l *fakeLockRepo) Acquire(_ context.Context, scope tenant.Scope, resource model.Resource, ttl time.Duration) (*model.BookingLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := repository.LockID(scope, resource)
	now := l.now()
	if current, ok := l.held[id]; ok && current.ExpiresAt.After(now) {
		return nil, bookingserrors.ErrLockHeld
	}
	l.seq++
	lock := model.BookingLock{
		ID:        id,
		TenantID:  scope.TenantID(),
		Owner:     fmt.Sprintf("owner-%d", l.seq),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	l.held[id] = lock
	l.acquired++
	return &lock, nil
}

func (l *fakeLockRepo) Renew(_ context.Context, _ tenant.Scope, lock *model.BookingLock, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.held[lock.ID]
	if !ok || current.Owner != lock.Owner {
		return bookingserrors.ErrLockLost
	}
	current.ExpiresAt = l.now().Add(ttl)
	l.held[lock.ID] = current
	return nil
}

func (l *fakeLockRepo) Release(_ context.Context, _ tenant.Scope, lock *model.BookingLock) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.held[lock.ID]; ok && current.Owner == lock.Owner {
		delete(l.held, lock.ID)
	}
	return nil
}

func (l *fakeLockRepo) heldCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func (l *fakeLockRepo) owner(id string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[id].Owner
}

// advance moves the lock clock forward, expiring locks without sleeping.
func (l *fakeLockRepo) advance(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now
	l.now = func() time.Time { return now().Add(d) }
}

type fakeCatalog struct {
	mu       sync.Mutex
	services map[string]*model.Service
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{services: map[string]*model.Service{}}
}

func (c *fakeCatalog) add(tenantID string, durationMin int, price int64) *model.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	svc := &model.Service{
		ID:          primitive.NewObjectID().Hex(),
		TenantID:    tenantID,
		Name:        "Haircut",
		DurationMin: durationMin,
		Price:       price,
		Active:      true,
	}
	c.services[svc.ID] = svc
	return svc
}

func (c *fakeCatalog) setPrice(id string, price int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[id].Price = price
}

func (c *fakeCatalog) deactivate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[id].Active = false
}

func (c *fakeCatalog) GetActiveService(_ context.Context, scope tenant.Scope, id string) (*model.Service, error) {
	if err := scope.Check(); err != nil {
		return nil, apperrors.TenantRequired(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	svc, ok := c.services[id]
	if !ok || svc.TenantID != scope.TenantID() || !svc.Active {
		return nil, apperrors.ServiceNotFound(id, nil)
	}
	out := *svc
	return &out, nil
}
