package mongo

import (
	"agendo/pkg/tenant"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNewScopedCollection_RejectsZeroScope(t *testing.T) {
	_, err := NewScopedCollection(nil, tenant.Scope{})
	if !errors.Is(err, tenant.ErrUnauthorizedTenant) {
		t.Fatalf("expected ErrUnauthorizedTenant, got %v", err)
	}
}

func TestSanitizeUpdate(t *testing.T) {
	tests := []struct {
		name   string
		input  bson.M
		expect bson.M
	}{
		{
			name:   "tenant stripped from $set",
			input:  bson.M{"$set": bson.M{"tenant_id": "other", "status": "cancelled"}},
			expect: bson.M{"$set": bson.M{"status": "cancelled"}},
		},
		{
			name:   "operator emptied by stripping is dropped",
			input:  bson.M{"$set": bson.M{"tenant_id": "other"}, "$inc": bson.M{"version": 1}},
			expect: bson.M{"$inc": bson.M{"version": 1}},
		},
		{
			name:   "tenant stripped from $unset",
			input:  bson.M{"$unset": bson.M{"tenant_id": ""}},
			expect: bson.M{},
		},
		{
			name:   "unrelated update untouched",
			input:  bson.M{"$set": bson.M{"notes": "hi"}},
			expect: bson.M{"$set": bson.M{"notes": "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeUpdate(tt.input)
			if len(got) != len(tt.expect) {
				t.Fatalf("got %v, want %v", got, tt.expect)
			}
			for op, want := range tt.expect {
				gotFields, ok := got[op].(bson.M)
				if !ok {
					t.Fatalf("operator %s missing in %v", op, got)
				}
				wantFields := want.(bson.M)
				if len(gotFields) != len(wantFields) {
					t.Errorf("operator %s: got %v, want %v", op, gotFields, wantFields)
				}
				for k, v := range wantFields {
					if gotFields[k] != v {
						t.Errorf("operator %s field %s: got %v, want %v", op, k, gotFields[k], v)
					}
				}
			}
		})
	}
}

func TestIsTransientConflict_PlainError(t *testing.T) {
	if IsTransientConflict(errors.New("boom")) {
		t.Error("plain errors are not transient conflicts")
	}
}
