package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	apperrors "github.com/allisson/scopedb/internal/errors"
)

// MongoRegistrationRepository persists registration records keyed by app id.
type MongoRegistrationRepository struct {
	collection *mongo.Collection
}

// NewMongoRegistrationRepository creates a registration repository using the
// given collection name.
func NewMongoRegistrationRepository(db *mongo.Database, collectionName string) *MongoRegistrationRepository {
	return &MongoRegistrationRepository{collection: db.Collection(collectionName)}
}

// Upsert stores the record, replacing any previous one for the same app.
func (r *MongoRegistrationRepository) Upsert(ctx context.Context, record *accessDomain.RegistrationRecord) error {
	filter := bson.M{"_id": record.AppID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, record, opts); err != nil {
		return apperrors.Wrap(err, "failed to upsert app registration")
	}
	return nil
}

// List returns every persisted registration record.
func (r *MongoRegistrationRepository) List(ctx context.Context) ([]*accessDomain.RegistrationRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list app registrations")
	}
	defer cursor.Close(ctx)

	var records []*accessDomain.RegistrationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode app registrations")
	}
	return records, nil
}
