package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	apperrors "github.com/allisson/scopedb/internal/errors"
)

// memoryDataRepository is an in-memory DataRepository that evaluates the
// filter subset used by the scoped layer ($and, $in, equality).
type memoryDataRepository struct {
	mu           sync.Mutex
	collections  map[string][]bson.M
	lastPipeline []bson.M
}

func newMemoryDataRepository() *memoryDataRepository {
	return &memoryDataRepository{collections: make(map[string][]bson.M)}
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		if key == "$and" {
			for _, sub := range want.([]bson.M) {
				if !matches(doc, sub) {
					return false
				}
			}
			continue
		}
		if cond, ok := want.(bson.M); ok {
			if in, ok := cond["$in"]; ok {
				found := false
				for _, candidate := range in.([]string) {
					if doc[key] == candidate {
						found = true
						break
					}
				}
				if !found {
					return false
				}
				continue
			}
		}
		if doc[key] != want {
			return false
		}
	}
	return true
}

func (r *memoryDataRepository) InsertOne(ctx context.Context, collection string, document bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection] = append(r.collections[collection], document)
	return nil
}

func (r *memoryDataRepository) InsertMany(ctx context.Context, collection string, documents []bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection] = append(r.collections[collection], documents...)
	return nil
}

func (r *memoryDataRepository) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.collections[collection] {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, apperrors.Wrap(apperrors.ErrNotFound, "document not found")
}

func (r *memoryDataRepository) Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bson.M
	for _, doc := range r.collections[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *memoryDataRepository) Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPipeline = pipeline
	var out []bson.M
	if len(pipeline) == 0 {
		return out, nil
	}
	match, _ := pipeline[0]["$match"].(bson.M)
	for _, doc := range r.collections[collection] {
		if matches(doc, match) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *memoryDataRepository) UpdateOne(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	return r.update(collection, filter, update, true)
}

func (r *memoryDataRepository) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	return r.update(collection, filter, update, false)
}

func (r *memoryDataRepository) update(collection string, filter, update bson.M, single bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var modified int64
	set, _ := update["$set"].(bson.M)
	for _, doc := range r.collections[collection] {
		if !matches(doc, filter) {
			continue
		}
		for key, value := range set {
			doc[key] = value
		}
		modified++
		if single {
			break
		}
	}
	return modified, nil
}

func (r *memoryDataRepository) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return r.delete(collection, filter, true)
}

func (r *memoryDataRepository) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return r.delete(collection, filter, false)
}

func (r *memoryDataRepository) delete(collection string, filter bson.M, single bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []bson.M
	var deleted int64
	for _, doc := range r.collections[collection] {
		if matches(doc, filter) && (!single || deleted == 0) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	r.collections[collection] = kept
	return deleted, nil
}

func (r *memoryDataRepository) CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, doc := range r.collections[collection] {
		if matches(doc, filter) {
			count++
		}
	}
	return count, nil
}

func newScopedHandle(data DataRepository, registry *PolicyRegistry, appID string, readScopes []string) *ScopedDB {
	return &ScopedDB{
		data:       data,
		registry:   registry,
		appID:      appID,
		readScopes: readScopes,
		writeScope: appID,
	}
}

func registryWith(appIDs ...string) *PolicyRegistry {
	registry := NewPolicyRegistry()
	for _, appID := range appIDs {
		policy, _ := accessDomain.NewAccessPolicy(accessDomain.AppConfig{AppID: appID})
		registry.Register(policy)
	}
	return registry
}

// TestScopedDB_WriteStamping tests that every write carries the write scope.
func TestScopedDB_WriteStamping(t *testing.T) {
	ctx := context.Background()
	data := newMemoryDataRepository()
	registry := registryWith("orders")
	db := newScopedHandle(data, registry, "orders", []string{"orders"})

	t.Run("InsertStampsOwnership", func(t *testing.T) {
		err := db.Collection("items").InsertOne(ctx, bson.M{"sku": "abc"})
		require.NoError(t, err)

		stored := data.collections["orders_items"]
		require.Len(t, stored, 1)
		assert.Equal(t, "orders", stored[0]["app_id"])
	})

	t.Run("CallerSuppliedOwnershipIsOverwritten", func(t *testing.T) {
		err := db.Collection("items").InsertOne(ctx, bson.M{"sku": "def", "app_id": "billing"})
		require.NoError(t, err)

		stored := data.collections["orders_items"]
		assert.Equal(t, "orders", stored[1]["app_id"], "spoofed ownership tag must be replaced")
	})

	t.Run("InsertManyStampsEveryDocument", func(t *testing.T) {
		err := db.Collection("items").InsertMany(ctx, []bson.M{{"sku": "g"}, {"sku": "h"}})
		require.NoError(t, err)

		stored := data.collections["orders_items"]
		for _, doc := range stored {
			assert.Equal(t, "orders", doc["app_id"])
		}
	})
}

// TestScopedDB_ReadFiltering tests that reads only see readable scopes.
func TestScopedDB_ReadFiltering(t *testing.T) {
	ctx := context.Background()
	data := newMemoryDataRepository()
	registry := registryWith("orders")
	db := newScopedHandle(data, registry, "orders", []string{"orders"})

	// A foreign document sitting in the same physical collection.
	require.NoError(t, data.InsertOne(ctx, "orders_items", bson.M{"sku": "own", "app_id": "orders"}))
	require.NoError(t, data.InsertOne(ctx, "orders_items", bson.M{"sku": "alien", "app_id": "billing"}))

	t.Run("FindFiltersForeignDocuments", func(t *testing.T) {
		docs, err := db.Collection("items").Find(ctx, bson.M{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "own", docs[0]["sku"])
	})

	t.Run("CallerFilterCannotWidenScope", func(t *testing.T) {
		docs, err := db.Collection("items").Find(ctx, bson.M{"app_id": "billing"})
		require.NoError(t, err)
		assert.Empty(t, docs, "filters intersect, they never escape the granted scopes")
	})

	t.Run("CountRespectsScope", func(t *testing.T) {
		count, err := db.Collection("items").CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FindOneMissReturnsNotFound", func(t *testing.T) {
		_, err := db.Collection("items").FindOne(ctx, bson.M{"sku": "alien"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("AggregatePrependsScopeMatch", func(t *testing.T) {
		docs, err := db.Collection("items").Aggregate(ctx, []bson.M{{"$sort": bson.M{"sku": 1}}})
		require.NoError(t, err)
		require.Len(t, docs, 1)

		require.NotEmpty(t, data.lastPipeline)
		_, hasMatch := data.lastPipeline[0]["$match"]
		assert.True(t, hasMatch, "scope match stage must come first")
	})
}

// TestScopedDB_CrossAppAccess tests foreign collection resolution and gating.
func TestScopedDB_CrossAppAccess(t *testing.T) {
	ctx := context.Background()
	data := newMemoryDataRepository()
	registry := registryWith("alpha", "delta", "echo")

	require.NoError(t, data.InsertOne(ctx, "delta_records", bson.M{"v": "d1", "app_id": "delta"}))
	require.NoError(t, data.InsertOne(ctx, "echo_records", bson.M{"v": "e1", "app_id": "echo"}))

	// alpha may read delta's data but not echo's.
	db := newScopedHandle(data, registry, "alpha", []string{"alpha", "delta"})

	t.Run("GrantedForeignCollectionIsReadable", func(t *testing.T) {
		coll := db.Collection("delta_records")
		assert.Equal(t, "delta_records", coll.Name())

		docs, err := coll.Find(ctx, bson.M{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "d1", docs[0]["v"])
	})

	t.Run("UngrantedForeignCollectionIsDenied", func(t *testing.T) {
		_, err := db.Collection("echo_records").Find(ctx, bson.M{})

		var scopeErr *accessDomain.ScopeError
		require.ErrorAs(t, err, &scopeErr)
		assert.Equal(t, "echo", scopeErr.Scope)
	})

	t.Run("ForeignCollectionIsReadOnly", func(t *testing.T) {
		err := db.Collection("delta_records").InsertOne(ctx, bson.M{"v": "intruder"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		_, err = db.Collection("delta_records").DeleteMany(ctx, bson.M{})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("UnprefixedNameResolvesToOwnCollection", func(t *testing.T) {
		assert.Equal(t, "alpha_records", db.Collection("records").Name())
	})
}

// TestScopedDB_Updates tests update and delete ownership constraints.
func TestScopedDB_Updates(t *testing.T) {
	ctx := context.Background()
	data := newMemoryDataRepository()
	registry := registryWith("orders")
	db := newScopedHandle(data, registry, "orders", []string{"orders"})

	require.NoError(t, data.InsertOne(ctx, "orders_items", bson.M{"sku": "own", "state": "new", "app_id": "orders"}))
	require.NoError(t, data.InsertOne(ctx, "orders_items", bson.M{"sku": "alien", "state": "new", "app_id": "billing"}))

	t.Run("UpdateOnlyTouchesOwnedDocuments", func(t *testing.T) {
		modified, err := db.Collection("items").UpdateMany(ctx,
			bson.M{"state": "new"},
			bson.M{"$set": bson.M{"state": "done"}},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(1), modified)
		assert.Equal(t, "new", data.collections["orders_items"][1]["state"])
	})

	t.Run("UpdateCannotReassignOwnership", func(t *testing.T) {
		_, err := db.Collection("items").UpdateOne(ctx,
			bson.M{"sku": "own"},
			bson.M{"$set": bson.M{"app_id": "billing"}},
		)
		require.NoError(t, err)
		assert.Equal(t, "orders", data.collections["orders_items"][0]["app_id"])
	})

	t.Run("DeleteOnlyTouchesOwnedDocuments", func(t *testing.T) {
		deleted, err := db.Collection("items").DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		require.Len(t, data.collections["orders_items"], 1)
		assert.Equal(t, "alien", data.collections["orders_items"][0]["sku"])
	})
}

// TestScopedDB_WithTenant tests the tenant partition dimension.
func TestScopedDB_WithTenant(t *testing.T) {
	ctx := context.Background()
	data := newMemoryDataRepository()
	registry := registryWith("orders")
	db := newScopedHandle(data, registry, "orders", []string{"orders"})

	tenantDB := db.WithTenant("t1")

	require.NoError(t, tenantDB.Collection("items").InsertOne(ctx, bson.M{"sku": "a"}))
	require.NoError(t, db.WithTenant("t2").Collection("items").InsertOne(ctx, bson.M{"sku": "b"}))

	t.Run("WritesAreTenantStamped", func(t *testing.T) {
		stored := data.collections["orders_items"]
		require.Len(t, stored, 2)
		assert.Equal(t, "t1", stored[0]["tenant_id"])
		assert.Equal(t, "t2", stored[1]["tenant_id"])
	})

	t.Run("ReadsAreTenantFiltered", func(t *testing.T) {
		docs, err := tenantDB.Collection("items").Find(ctx, bson.M{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a", docs[0]["sku"])
	})

	t.Run("BaseHandleSeesAllTenants", func(t *testing.T) {
		docs, err := db.Collection("items").Find(ctx, bson.M{})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}
