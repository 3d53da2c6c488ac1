package mongo

import (
	"agendo/pkg/tenant"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScopedCollection wraps a tenant-owned collection. Every filter it sends is
// rewritten to carry the scope tenant and every insert is stamped with it.
type ScopedCollection struct {
	coll  *mongo.Collection
	scope tenant.Scope
}

func NewScopedCollection(coll *mongo.Collection, scope tenant.Scope) (*ScopedCollection, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	return &ScopedCollection{coll: coll, scope: scope}, nil
}

func (c *ScopedCollection) FindOne(ctx context.Context, filter bson.M, out any, opts ...*options.FindOneOptions) error {
	f, err := c.scope.Filter(filter)
	if err != nil {
		return err
	}
	return c.coll.FindOne(ctx, f, opts...).Decode(out)
}

// Find decodes all matches into out, which must be a pointer to a slice.
func (c *ScopedCollection) Find(ctx context.Context, filter bson.M, out any, opts ...*options.FindOptions) error {
	f, err := c.scope.Filter(filter)
	if err != nil {
		return err
	}
	cursor, err := c.coll.Find(ctx, f, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = cursor.Close(ctx) }()
	return cursor.All(ctx, out)
}

func (c *ScopedCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	f, err := c.scope.Filter(filter)
	if err != nil {
		return 0, err
	}
	return c.coll.CountDocuments(ctx, f)
}

func (c *ScopedCollection) InsertOne(ctx context.Context, doc tenant.Owned) (*mongo.InsertOneResult, error) {
	if err := c.scope.Stamp(doc); err != nil {
		return nil, err
	}
	return c.coll.InsertOne(ctx, doc)
}

func (c *ScopedCollection) UpdateOne(ctx context.Context, filter bson.M, update bson.M, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f, err := c.scope.Filter(filter)
	if err != nil {
		return nil, err
	}
	return c.coll.UpdateOne(ctx, f, SanitizeUpdate(update), opts...)
}

func (c *ScopedCollection) DeleteOne(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	f, err := c.scope.Filter(filter)
	if err != nil {
		return nil, err
	}
	return c.coll.DeleteOne(ctx, f)
}

// SanitizeUpdate drops any attempt to rewrite the tenant id. Ownership never
// changes after insert.
func SanitizeUpdate(update bson.M) bson.M {
	out := make(bson.M, len(update))
	for op, v := range update {
		fields, ok := v.(bson.M)
		if !ok {
			if op != tenant.FieldTenantID {
				out[op] = v
			}
			continue
		}
		clean := make(bson.M, len(fields))
		for k, fv := range fields {
			if k == tenant.FieldTenantID {
				continue
			}
			clean[k] = fv
		}
		if len(clean) > 0 {
			out[op] = clean
		}
	}
	return out
}
