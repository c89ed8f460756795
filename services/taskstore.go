// Package services holds TaskStore, the read-modify-write rules applied to
// an owner's task document.
//
// Every operation loads the document, changes it in memory and writes it
// back with a separate call. There is no version check between the read and
// the write, so concurrent mutations of one owner can lose updates, and two
// first-time AddTask calls can both create a document.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"go.mongodb.org/mongo-driver/bson"

	"taskly/models"
	"taskly/store"
)

var (
	ErrTasksNotFound    = errors.New("tasks not found for the email")
	ErrDocumentNotFound = errors.New("document not found for the email")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidDocument  = errors.New("body is not a task document")
)

type TaskStore struct {
	collection store.Collection
}

func NewTaskStore(collection store.Collection) *TaskStore {
	return &TaskStore{collection: collection}
}

// AddResult describes what AddTask did. Created is true when a new owner
// document was inserted; Document is set then, Task otherwise.
type AddResult struct {
	Created  bool
	Document *models.TaskDocument
	Task     *models.Task
}

// ListTasks returns every document stored for email.
func (s *TaskStore) ListTasks(ctx context.Context, email string) ([]models.TaskDocument, error) {
	docs, err := s.collection.Find(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrTasksNotFound
	}
	return docs, nil
}

// AddTask appends a task to the owner's todo bucket, creating the owner
// document on first use. The first task is "task1" and keeps every key the
// client sent; later ones are numbered len(todo)+2 and keep only the
// modelled keys.
func (s *TaskStore) AddTask(ctx context.Context, email string, input models.TaskInput) (AddResult, error) {
	doc, err := s.collection.FindOne(ctx, email)
	if errors.Is(err, store.ErrNoDocument) {
		doc = &models.TaskDocument{
			Email:      email,
			Todo:       []models.Task{newTask("task1", input, false)},
			InProgress: []models.Task{},
			Completed:  []models.Task{},
		}
		id, err := s.collection.InsertOne(ctx, doc)
		if err != nil {
			return AddResult{}, fmt.Errorf("add task: %w", err)
		}
		doc.ID = id
		return AddResult{Created: true, Document: doc}, nil
	}
	if err != nil {
		return AddResult{}, fmt.Errorf("add task: %w", err)
	}

	task := newTask(fmt.Sprintf("task%d", len(doc.Todo)+2), input, true)
	todo := append(doc.Todo, task)

	if err := s.collection.UpdateOne(ctx, email, bson.M{"todo": todo}); err != nil {
		return AddResult{}, fmt.Errorf("add task: %w", err)
	}
	return AddResult{Task: &task}, nil
}

// ReplaceAllTasks overwrites the owner's document with body. The body is
// not merged; its _id is dropped and it must decode as a TaskDocument, so
// buckets are arrays of task objects. Task values of any type are kept.
func (s *TaskStore) ReplaceAllTasks(ctx context.Context, email string, body bson.M) error {
	delete(body, "_id")
	log.Printf("replace tasks for %s: %v", email, body)

	if err := checkDocument(body); err != nil {
		return err
	}

	doc, err := s.collection.FindOne(ctx, email)
	if errors.Is(err, store.ErrNoDocument) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("replace tasks: %w", err)
	}
	log.Printf("replacing document %s for %s", doc.ID.Hex(), email)

	// A document removed between the lookup and the write still counts as updated.
	err = s.collection.ReplaceOne(ctx, email, body)
	if errors.Is(err, store.ErrNoDocument) {
		log.Printf("replace tasks for %s matched no document", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("replace tasks: %w", err)
	}
	return nil
}

// UpdateTask overwrites the non-empty fields of patch on the task found by
// id in the bucket named by patch.Status. Empty fields are left unchanged.
func (s *TaskStore) UpdateTask(ctx context.Context, email string, patch models.TaskPatch) (*models.TaskDocument, error) {
	doc, i, err := s.locate(ctx, email, patch.Status, patch.ID)
	if err != nil {
		return nil, err
	}

	task := &(*doc.Bucket(patch.Status))[i]
	if patch.Title != "" {
		task.Title = patch.Title
	}
	if patch.Priority != "" {
		task.Priority = patch.Priority
	}
	if patch.Description != "" {
		task.Description = patch.Description
	}
	if patch.Deadline != "" {
		task.Deadline = patch.Deadline
	}

	if err := s.save(ctx, email, doc); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc, nil
}

// DeleteTask removes one task from the bucket named by ref.Status, keeping
// the order of the rest.
func (s *TaskStore) DeleteTask(ctx context.Context, email string, ref models.TaskRef) (*models.TaskDocument, error) {
	doc, i, err := s.locate(ctx, email, ref.Status, ref.ID)
	if err != nil {
		return nil, err
	}

	bucket := doc.Bucket(ref.Status)
	*bucket = slices.Delete(*bucket, i, i+1)

	if err := s.save(ctx, email, doc); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return doc, nil
}

// locate validates status, loads the owner document and finds the task in
// that one bucket only.
func (s *TaskStore) locate(ctx context.Context, email, status, id string) (*models.TaskDocument, int, error) {
	if !models.ValidStatus(status) {
		return nil, -1, ErrInvalidStatus
	}

	doc, err := s.collection.FindOne(ctx, email)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, -1, ErrDocumentNotFound
	}
	if err != nil {
		return nil, -1, fmt.Errorf("load document: %w", err)
	}

	i := doc.IndexOf(status, id)
	if i < 0 {
		return nil, -1, ErrTaskNotFound
	}
	return doc, i, nil
}

// save writes the whole document back with a field-level set.
func (s *TaskStore) save(ctx context.Context, email string, doc *models.TaskDocument) error {
	set := bson.M{
		"email":      doc.Email,
		"todo":       nonNil(doc.Todo),
		"inProgress": nonNil(doc.InProgress),
		"completed":  nonNil(doc.Completed),
	}
	err := s.collection.UpdateOne(ctx, email, set)
	if errors.Is(err, store.ErrNoDocument) {
		return ErrDocumentNotFound
	}
	return err
}

// newTask builds a todo task from input. modelledOnly drops the client's
// extra keys, except non-string values of modelled ones.
func newTask(id string, input models.TaskInput, modelledOnly bool) models.Task {
	var extra map[string]interface{}
	for k, v := range input.Extra {
		if k == "id" || k == "status" || (modelledOnly && !models.IsTaskKey(k)) {
			continue
		}
		if extra == nil {
			extra = map[string]interface{}{}
		}
		extra[k] = v
	}
	return models.Task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		Status:      models.StatusTodo,
		Extra:       extra,
	}
}

// checkDocument reports ErrInvalidDocument when body would not load back
// as a TaskDocument.
func checkDocument(body bson.M) error {
	raw, err := bson.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var doc models.TaskDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func nonNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
