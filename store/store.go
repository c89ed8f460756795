// Package store is the document collection holding one TaskDocument per
// owner email. Backends mirror the subset of Mongo collection semantics the
// task service relies on: find by email, insert without uniqueness, $set of
// top-level fields and whole-document replacement that keeps _id.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskly/config"
	"taskly/models"
)

// ErrNoDocument is returned when no document matches the email filter.
var ErrNoDocument = errors.New("no document for email")

type Collection interface {
	// Find returns every document whose email matches, in insertion order.
	Find(ctx context.Context, email string) ([]models.TaskDocument, error)

	// FindOne returns the first matching document or ErrNoDocument.
	FindOne(ctx context.Context, email string) (*models.TaskDocument, error)

	// InsertOne stores doc and returns its generated identity.
	InsertOne(ctx context.Context, doc *models.TaskDocument) (primitive.ObjectID, error)

	// UpdateOne sets top-level fields on the first matching document.
	UpdateOne(ctx context.Context, email string, set bson.M) error

	// ReplaceOne overwrites the first matching document, keeping its _id.
	ReplaceOne(ctx context.Context, email string, replacement bson.M) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open builds the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (Collection, error) {
	switch cfg.Store {
	case config.StoreMongo:
		client, err := config.ConnectDB(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		return NewMongo(client, cfg.DatabaseName, cfg.Collection), nil
	case config.StoreSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrStoreUnknown, cfg.Store)
}

// toM normalizes any BSON-encodable value into a bson.M.
func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}

func decodeDocument(m bson.M) (models.TaskDocument, error) {
	var doc models.TaskDocument
	raw, err := bson.Marshal(m)
	if err != nil {
		return doc, fmt.Errorf("encode document: %w", err)
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// emailOf returns the document's email field, if it is a string.
func emailOf(m bson.M) (string, bool) {
	email, ok := m["email"].(string)
	return email, ok
}

// applySet mimics {$set: set} on top-level fields. _id is never touched.
func applySet(doc bson.M, set bson.M) error {
	normalized, err := toM(set)
	if err != nil {
		return err
	}
	for k, v := range normalized {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

// withIdentity returns replacement with _id forced to id.
func withIdentity(replacement bson.M, id any) (bson.M, error) {
	doc, err := toM(replacement)
	if err != nil {
		return nil, err
	}
	doc["_id"] = id
	return doc, nil
}
