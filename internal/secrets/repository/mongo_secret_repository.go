// Package repository implements data persistence for app secret records.
// Secrets live in a single collection keyed by app id; rotation replaces the
// record in one upsert so no partial state is ever observable.
package repository

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apperrors "github.com/allisson/scopedb/internal/errors"
	secretsDomain "github.com/allisson/scopedb/internal/secrets/domain"
)

// MongoSecretRepository implements AppSecret persistence on MongoDB.
type MongoSecretRepository struct {
	collection *mongo.Collection
}

// NewMongoSecretRepository creates a new MongoDB AppSecret repository instance.
func NewMongoSecretRepository(db *mongo.Database, collectionName string) *MongoSecretRepository {
	return &MongoSecretRepository{collection: db.Collection(collectionName)}
}

// Get retrieves the live secret record for an app.
func (m *MongoSecretRepository) Get(ctx context.Context, appID string) (*secretsDomain.AppSecret, error) {
	var secret secretsDomain.AppSecret
	err := m.collection.FindOne(ctx, bson.M{"_id": appID}).Decode(&secret)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get app secret")
	}
	return &secret, nil
}

// Exists reports whether a secret record exists for an app without decrypting it.
func (m *MongoSecretRepository) Exists(ctx context.Context, appID string) (bool, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{"_id": appID})
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check app secret existence")
	}
	return count > 0, nil
}

// Upsert stores the secret record, replacing any previous one for the same
// app in a single write. The replacement is atomic at the storage layer: a
// reader observes either the old record or the new one, never a mix.
func (m *MongoSecretRepository) Upsert(ctx context.Context, secret *secretsDomain.AppSecret) error {
	_, err := m.collection.ReplaceOne(
		ctx,
		bson.M{"_id": secret.AppID},
		secret,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert app secret")
	}
	return nil
}
