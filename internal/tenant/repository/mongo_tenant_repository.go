// Package repository provides the MongoDB-backed persistence for tenants.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apperrors "github.com/allisson/scopedb/internal/errors"
	tenantDomain "github.com/allisson/scopedb/internal/tenant/domain"
)

// MongoTenantRepository stores tenant documents. The unique index on
// (app_slug, tenant_id) is the authority for creation races; callers map
// duplicate-key conflicts to an idempotent re-read.
type MongoTenantRepository struct {
	collection *mongo.Collection
}

// NewMongoTenantRepository creates a tenant repository using the given
// collection name.
func NewMongoTenantRepository(db *mongo.Database, collectionName string) *MongoTenantRepository {
	return &MongoTenantRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique compound index that makes concurrent
// tenant creation converge to a single document.
func (r *MongoTenantRepository) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "app_slug", Value: 1},
			{Key: "tenant_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return apperrors.Wrap(err, "failed to create tenant index")
	}
	return nil
}

// Insert stores a new tenant document. A concurrent creator losing the race
// gets ErrConflict.
func (r *MongoTenantRepository) Insert(ctx context.Context, tenant *tenantDomain.Tenant) error {
	if _, err := r.collection.InsertOne(ctx, tenant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "tenant already exists")
		}
		return apperrors.Wrap(err, "failed to insert tenant")
	}
	return nil
}

// Get retrieves the tenant document for (appSlug, tenantID).
func (r *MongoTenantRepository) Get(ctx context.Context, appSlug, tenantID string) (*tenantDomain.Tenant, error) {
	filter := bson.M{"app_slug": appSlug, "tenant_id": tenantID}
	var tenant tenantDomain.Tenant
	if err := r.collection.FindOne(ctx, filter).Decode(&tenant); err != nil {
		if apperrors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantDomain.ErrTenantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant")
	}
	return &tenant, nil
}

// UpdateMetadata merges the given entries into the tenant's metadata map and
// returns the updated document.
func (r *MongoTenantRepository) UpdateMetadata(
	ctx context.Context,
	appSlug, tenantID string,
	metadata map[string]any,
) (*tenantDomain.Tenant, error) {
	filter := bson.M{"app_slug": appSlug, "tenant_id": tenantID}

	set := bson.M{"updated_at": time.Now().UTC()}
	for key, value := range metadata {
		set["metadata."+key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var tenant tenantDomain.Tenant
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&tenant)
	if err != nil {
		if apperrors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantDomain.ErrTenantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to update tenant metadata")
	}
	return &tenant, nil
}

// List returns all tenants of one app ordered by tenant id.
func (r *MongoTenantRepository) List(ctx context.Context, appSlug string) ([]*tenantDomain.Tenant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "tenant_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"app_slug": appSlug}, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tenants")
	}
	defer cursor.Close(ctx)

	var tenants []*tenantDomain.Tenant
	if err := cursor.All(ctx, &tenants); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode tenants")
	}
	return tenants, nil
}
