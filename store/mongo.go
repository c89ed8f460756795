package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"taskly/models"
)

type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongo(client *mongo.Client, database, collection string) *Mongo {
	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (m *Mongo) Find(ctx context.Context, email string) ([]models.TaskDocument, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", email, err)
	}
	defer cursor.Close(ctx)

	var docs []models.TaskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents for %s: %w", email, err)
	}
	return docs, nil
}

func (m *Mongo) FindOne(ctx context.Context, email string) (*models.TaskDocument, error) {
	var doc models.TaskDocument
	err := m.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", email, err)
	}
	return &doc, nil
}

func (m *Mongo) InsertOne(ctx context.Context, doc *models.TaskDocument) (primitive.ObjectID, error) {
	result, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", doc.Email, err)
	}
	id, _ := result.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (m *Mongo) UpdateOne(ctx context.Context, email string, set bson.M) error {
	result, err := m.collection.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", email, err)
	}
	if result.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *Mongo) ReplaceOne(ctx context.Context, email string, replacement bson.M) error {
	result, err := m.collection.ReplaceOne(ctx, bson.M{"email": email}, replacement)
	if err != nil {
		return fmt.Errorf("replace %s: %w", email, err)
	}
	if result.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
