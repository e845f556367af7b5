package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	"github.com/allisson/scopedb/internal/errors"
)

// ScopedDB is a database handle bound to one authenticated app. Every
// operation obtained through it is rewritten before touching storage: reads
// are filtered to the handle's read scopes, writes are stamped with its write
// scope, and collection names are resolved to their physical per-app names.
// The caller cannot widen the handle after it is issued.
type ScopedDB struct {
	data       DataRepository
	registry   *PolicyRegistry
	appID      string
	readScopes []string
	writeScope string
	tenantID   string
}

// AppID returns the app the handle was issued to.
func (db *ScopedDB) AppID() string {
	return db.appID
}

// ReadScopes returns a copy of the effective read scopes.
func (db *ScopedDB) ReadScopes() []string {
	out := make([]string, len(db.readScopes))
	copy(out, db.readScopes)
	return out
}

// WriteScope returns the scope stamped on every write.
func (db *ScopedDB) WriteScope() string {
	return db.writeScope
}

// WithTenant returns a derived handle additionally confined to one tenant.
// Writes are stamped with the tenant id and reads filtered to it. The app
// scopes carry over unchanged.
func (db *ScopedDB) WithTenant(tenantID string) *ScopedDB {
	derived := *db
	derived.tenantID = tenantID
	return &derived
}

// Collection binds the handle to a logical collection name. An unprefixed
// name resolves to the app's own collection. A name starting with a
// registered app id followed by an underscore addresses that app's collection
// directly and requires the owner to be within the handle's read scopes.
func (db *ScopedDB) Collection(name string) *ScopedCollection {
	physical, owner, err := db.resolve(name)
	return &ScopedCollection{
		db:       db,
		physical: physical,
		owner:    owner,
		err:      err,
	}
}

// resolve maps a logical collection name to its physical name and owning app.
// Matching against registered app ids is exact and case-sensitive; when ids
// prefix each other the longest match wins.
func (db *ScopedDB) resolve(name string) (physical, owner string, err error) {
	owner = ""
	for _, appID := range db.registry.AppIDs() {
		if strings.HasPrefix(name, appID+"_") && len(appID) > len(owner) {
			owner = appID
		}
	}
	if owner == "" {
		return db.appID + "_" + name, db.appID, nil
	}
	if owner != db.appID && !contains(db.readScopes, owner) {
		return "", "", &accessDomain.ScopeError{AppID: db.appID, Scope: owner}
	}
	return name, owner, nil
}

func contains(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ScopedCollection exposes document operations against one resolved
// collection with scope rewriting applied.
type ScopedCollection struct {
	db       *ScopedDB
	physical string
	owner    string
	err      error
}

// Name returns the resolved physical collection name.
func (c *ScopedCollection) Name() string {
	return c.physical
}

// InsertOne stamps the document with the write scope and inserts it. Any
// caller-supplied ownership fields are overwritten; the write scope is never
// caller-controlled.
func (c *ScopedCollection) InsertOne(ctx context.Context, document bson.M) error {
	if err := c.writable(); err != nil {
		return err
	}
	return c.db.data.InsertOne(ctx, c.physical, c.stamp(document))
}

// InsertMany stamps and inserts a batch of documents.
func (c *ScopedCollection) InsertMany(ctx context.Context, documents []bson.M) error {
	if err := c.writable(); err != nil {
		return err
	}
	stamped := make([]bson.M, len(documents))
	for i, doc := range documents {
		stamped[i] = c.stamp(doc)
	}
	return c.db.data.InsertMany(ctx, c.physical, stamped)
}

// FindOne returns the first readable document matching the filter.
func (c *ScopedCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.db.data.FindOne(ctx, c.physical, c.readFilter(filter))
}

// Find returns all readable documents matching the filter.
func (c *ScopedCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.db.data.Find(ctx, c.physical, c.readFilter(filter))
}

// Aggregate runs the pipeline with a scope match stage prepended, so every
// later stage only ever sees readable documents.
func (c *ScopedCollection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	if c.err != nil {
		return nil, c.err
	}
	scoped := make([]bson.M, 0, len(pipeline)+1)
	scoped = append(scoped, bson.M{"$match": c.scopeFilter()})
	scoped = append(scoped, pipeline...)
	return c.db.data.Aggregate(ctx, c.physical, scoped)
}

// CountDocuments counts readable documents matching the filter.
func (c *ScopedCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.db.data.CountDocuments(ctx, c.physical, c.readFilter(filter))
}

// UpdateOne applies the update to the first matching document owned by the
// write scope. The update cannot reassign ownership.
func (c *ScopedCollection) UpdateOne(ctx context.Context, filter, update bson.M) (int64, error) {
	if err := c.writable(); err != nil {
		return 0, err
	}
	return c.db.data.UpdateOne(ctx, c.physical, c.writeFilter(filter), c.sanitizeUpdate(update))
}

// UpdateMany applies the update to all matching documents owned by the write
// scope.
func (c *ScopedCollection) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	if err := c.writable(); err != nil {
		return 0, err
	}
	return c.db.data.UpdateMany(ctx, c.physical, c.writeFilter(filter), c.sanitizeUpdate(update))
}

// DeleteOne removes the first matching document owned by the write scope.
func (c *ScopedCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	if err := c.writable(); err != nil {
		return 0, err
	}
	return c.db.data.DeleteOne(ctx, c.physical, c.writeFilter(filter))
}

// DeleteMany removes all matching documents owned by the write scope.
func (c *ScopedCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	if err := c.writable(); err != nil {
		return 0, err
	}
	return c.db.data.DeleteMany(ctx, c.physical, c.writeFilter(filter))
}

// writable rejects writes addressed to another app's collection. Read scopes
// never grant write access.
func (c *ScopedCollection) writable() error {
	if c.err != nil {
		return c.err
	}
	if c.owner != c.db.appID {
		return errors.Wrap(errors.ErrForbidden,
			fmt.Sprintf("app %q cannot write to collection owned by %q", c.db.appID, c.owner))
	}
	return nil
}

// stamp copies the document and forces the ownership fields.
func (c *ScopedCollection) stamp(document bson.M) bson.M {
	out := make(bson.M, len(document)+2)
	for k, v := range document {
		out[k] = v
	}
	out["app_id"] = c.db.writeScope
	if c.db.tenantID != "" {
		out["tenant_id"] = c.db.tenantID
	}
	return out
}

// scopeFilter is the ownership constraint added to every read.
func (c *ScopedCollection) scopeFilter() bson.M {
	filter := bson.M{"app_id": bson.M{"$in": c.db.readScopes}}
	if c.db.tenantID != "" {
		filter["tenant_id"] = c.db.tenantID
	}
	return filter
}

// readFilter intersects the caller's filter with the scope constraint. The
// intersection can only narrow results, so a caller-supplied app_id clause
// cannot reach outside the granted scopes.
func (c *ScopedCollection) readFilter(filter bson.M) bson.M {
	if len(filter) == 0 {
		return c.scopeFilter()
	}
	return bson.M{"$and": []bson.M{filter, c.scopeFilter()}}
}

// writeFilter intersects the caller's filter with ownership by the write
// scope, so updates and deletes never touch readable foreign documents.
func (c *ScopedCollection) writeFilter(filter bson.M) bson.M {
	owned := bson.M{"app_id": c.db.writeScope}
	if c.db.tenantID != "" {
		owned["tenant_id"] = c.db.tenantID
	}
	if len(filter) == 0 {
		return owned
	}
	return bson.M{"$and": []bson.M{filter, owned}}
}

// sanitizeUpdate forces the ownership fields inside $set so an update cannot
// reassign a document to another app or tenant.
func (c *ScopedCollection) sanitizeUpdate(update bson.M) bson.M {
	out := make(bson.M, len(update))
	for k, v := range update {
		out[k] = v
	}
	var set bson.M
	if current, ok := out["$set"].(bson.M); ok {
		set = make(bson.M, len(current)+2)
		for k, v := range current {
			set[k] = v
		}
	} else {
		set = bson.M{}
	}
	if _, ok := set["app_id"]; ok {
		set["app_id"] = c.db.writeScope
	}
	if _, ok := set["tenant_id"]; ok && c.db.tenantID != "" {
		set["tenant_id"] = c.db.tenantID
	}
	if len(set) > 0 {
		out["$set"] = set
	}
	return out
}
