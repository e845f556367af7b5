package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
)

// DataRepository defines the raw document operations the scoped layer rewrites
// and delegates to. Collection names are physical names; filters and documents
// arrive already rewritten. Implementations must not add any scoping of their
// own.
type DataRepository interface {
	// InsertOne inserts a single document into the named collection.
	InsertOne(ctx context.Context, collection string, document bson.M) error

	// InsertMany inserts a batch of documents into the named collection.
	InsertMany(ctx context.Context, collection string, documents []bson.M) error

	// FindOne returns the first document matching the filter.
	FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error)

	// Find returns all documents matching the filter.
	Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error)

	// Aggregate runs a pipeline against the named collection.
	Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error)

	// UpdateOne applies the update to the first matching document and returns
	// the modified count.
	UpdateOne(ctx context.Context, collection string, filter, update bson.M) (int64, error)

	// UpdateMany applies the update to all matching documents and returns the
	// modified count.
	UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error)

	// DeleteOne removes the first matching document and returns the deleted count.
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)

	// DeleteMany removes all matching documents and returns the deleted count.
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)

	// CountDocuments counts documents matching the filter.
	CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error)
}

// RegistrationRepository persists registered policies so the in-memory
// registry can be rebuilt on restart.
type RegistrationRepository interface {
	// Upsert stores the record, replacing any previous one for the same app.
	Upsert(ctx context.Context, record *accessDomain.RegistrationRecord) error

	// List returns every persisted registration record.
	List(ctx context.Context) ([]*accessDomain.RegistrationRecord, error)
}

// Engine defines the operations of the scoped access layer: registering app
// policies and handing out scoped database handles.
type Engine interface {
	// RegisterApp validates and registers an app's access policy, persists it,
	// and issues a credential when the app has none yet. A persistence failure
	// does not fail the call; the result reports a degraded outcome instead.
	RegisterApp(ctx context.Context, cfg accessDomain.AppConfig) (*accessDomain.Registration, error)

	// GetScopedDB authenticates the caller and returns a handle restricted to
	// the requested scopes. A nil readScopes requests the full registered set;
	// any requested scope outside the registered set fails the whole call.
	GetScopedDB(ctx context.Context, appID, appToken string, readScopes []string) (*ScopedDB, error)

	// ReloadPolicies rebuilds the in-memory registry from persisted
	// registrations. Called once at startup.
	ReloadPolicies(ctx context.Context) error
}
