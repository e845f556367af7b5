// Package repository provides the MongoDB-backed persistence for the access
// domain: raw document operations delegated to by scoped handles, and the
// registration records the policy registry is rebuilt from.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	apperrors "github.com/allisson/scopedb/internal/errors"
)

// MongoDataRepository executes document operations against physical
// collections. It performs no scoping of its own; filters and documents
// arrive fully rewritten from the scoped layer.
type MongoDataRepository struct {
	db *mongo.Database
}

// NewMongoDataRepository creates a data repository over the given database.
func NewMongoDataRepository(db *mongo.Database) *MongoDataRepository {
	return &MongoDataRepository{db: db}
}

// InsertOne inserts a single document into the named collection.
func (r *MongoDataRepository) InsertOne(ctx context.Context, collection string, document bson.M) error {
	if _, err := r.db.Collection(collection).InsertOne(ctx, document); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "document already exists")
		}
		return apperrors.Wrap(err, "failed to insert document")
	}
	return nil
}

// InsertMany inserts a batch of documents into the named collection.
func (r *MongoDataRepository) InsertMany(ctx context.Context, collection string, documents []bson.M) error {
	if len(documents) == 0 {
		return nil
	}
	docs := make([]any, len(documents))
	for i, d := range documents {
		docs[i] = d
	}
	if _, err := r.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "document already exists")
		}
		return apperrors.Wrap(err, "failed to insert documents")
	}
	return nil
}

// FindOne returns the first document matching the filter.
func (r *MongoDataRepository) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := r.db.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if apperrors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "document not found")
		}
		return nil, apperrors.Wrap(err, "failed to find document")
	}
	return doc, nil
}

// Find returns all documents matching the filter.
func (r *MongoDataRepository) Find(ctx context.Context, collection string, filter bson.M) ([]bson.M, error) {
	cursor, err := r.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find documents")
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode documents")
	}
	return docs, nil
}

// Aggregate runs a pipeline against the named collection.
func (r *MongoDataRepository) Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error) {
	cursor, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to run aggregation")
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode aggregation results")
	}
	return docs, nil
}

// UpdateOne applies the update to the first matching document.
func (r *MongoDataRepository) UpdateOne(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	result, err := r.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to update document")
	}
	return result.ModifiedCount, nil
}

// UpdateMany applies the update to all matching documents.
func (r *MongoDataRepository) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	result, err := r.db.Collection(collection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to update documents")
	}
	return result.ModifiedCount, nil
}

// DeleteOne removes the first matching document.
func (r *MongoDataRepository) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	result, err := r.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete document")
	}
	return result.DeletedCount, nil
}

// DeleteMany removes all matching documents.
func (r *MongoDataRepository) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	result, err := r.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete documents")
	}
	return result.DeletedCount, nil
}

// CountDocuments counts documents matching the filter.
func (r *MongoDataRepository) CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error) {
	count, err := r.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count documents")
	}
	return count, nil
}
