package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskly/models"
)

// Memory is an in-process Collection. Each call is atomic on its own; a
// read followed by a write from the caller is not, exactly like a remote
// collection.
type Memory struct {
	mu   sync.RWMutex
	docs []bson.M

	// Error injection for testing
	FindErr    error
	InsertErr  error
	UpdateErr  error
	ReplaceErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Find(ctx context.Context, email string) ([]models.TaskDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var docs []models.TaskDocument
	for _, raw := range m.docs {
		if e, ok := emailOf(raw); ok && e == email {
			doc, err := decodeDocument(raw)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *Memory) FindOne(ctx context.Context, email string) (*models.TaskDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	i := m.indexOf(email)
	if i < 0 {
		return nil, ErrNoDocument
	}
	doc, err := decodeDocument(m.docs[i])
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (m *Memory) InsertOne(ctx context.Context, doc *models.TaskDocument) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return primitive.NilObjectID, m.InsertErr
	}
	raw, err := toM(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := doc.ID
	if id.IsZero() {
		id = primitive.NewObjectID()
	}
	raw["_id"] = id
	m.docs = append(m.docs, raw)
	return id, nil
}

func (m *Memory) UpdateOne(ctx context.Context, email string, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	i := m.indexOf(email)
	if i < 0 {
		return ErrNoDocument
	}
	return applySet(m.docs[i], set)
}

func (m *Memory) ReplaceOne(ctx context.Context, email string, replacement bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	i := m.indexOf(email)
	if i < 0 {
		return ErrNoDocument
	}
	doc, err := withIdentity(replacement, m.docs[i]["_id"])
	if err != nil {
		return err
	}
	m.docs[i] = doc
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close(ctx context.Context) error { return nil }

// Raw returns copies of every stored document, including fields that
// TaskDocument does not model.
func (m *Memory) Raw() []bson.M {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]bson.M, 0, len(m.docs))
	for _, d := range m.docs {
		c, err := toM(d)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m *Memory) indexOf(email string) int {
	for i, d := range m.docs {
		if e, ok := emailOf(d); ok && e == email {
			return i
		}
	}
	return -1
}
