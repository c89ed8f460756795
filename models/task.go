package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bucket names. A task's Status always equals the bucket holding it.
const (
	StatusTodo       = "todo"
	StatusInProgress = "inProgress"
	StatusCompleted  = "completed"
)

// Task is stored and served under the keys id, title, description,
// priority, deadline and status. Stored tasks may carry other keys, or
// non-string values under those keys; both are kept in Extra and written
// back unchanged.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Deadline    string
	Status      string

	Extra map[string]interface{}
}

// TaskDocument is the single record holding all three buckets of one owner.
type TaskDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string             `bson:"email" json:"email"`
	Todo       []Task             `bson:"todo" json:"todo"`
	InProgress []Task             `bson:"inProgress" json:"inProgress"`
	Completed  []Task             `bson:"completed" json:"completed"`
}

// TaskInput is the client payload for a new task. Extra holds any other
// keys the client sent.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Deadline    string

	Extra map[string]interface{}
}

func (in *TaskInput) UnmarshalJSON(data []byte) error {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	*in = TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		Extra:       t.Extra,
	}
	if t.ID != "" {
		in.setExtra("id", t.ID)
	}
	if t.Status != "" {
		in.setExtra("status", t.Status)
	}
	return nil
}

func (in *TaskInput) setExtra(key string, v interface{}) {
	if in.Extra == nil {
		in.Extra = map[string]interface{}{}
	}
	in.Extra[key] = v
}

// TaskPatch addresses one task by bucket and id. Empty fields mean "no change".
type TaskPatch struct {
	Status      string `json:"status"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

type TaskRef struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Bucket returns a pointer to the bucket named by status, or nil for an unknown name.
func (d *TaskDocument) Bucket(status string) *[]Task {
	switch status {
	case StatusTodo:
		return &d.Todo
	case StatusInProgress:
		return &d.InProgress
	case StatusCompleted:
		return &d.Completed
	}
	return nil
}

// IndexOf returns the position of the task with the given id in the named bucket, or -1.
func (d *TaskDocument) IndexOf(status, id string) int {
	bucket := d.Bucket(status)
	if bucket == nil {
		return -1
	}
	for i, t := range *bucket {
		if t.ID == id {
			return i
		}
	}
	return -1
}

var taskKeys = [...]string{"id", "title", "description", "priority", "deadline", "status"}

// IsTaskKey reports whether key is one of the modelled task keys.
func IsTaskKey(key string) bool {
	for _, k := range taskKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (t *Task) field(key string) *string {
	switch key {
	case "id":
		return &t.ID
	case "title":
		return &t.Title
	case "description":
		return &t.Description
	case "priority":
		return &t.Priority
	case "deadline":
		return &t.Deadline
	case "status":
		return &t.Status
	}
	return nil
}

// absorb fills t from a decoded document. String values of modelled keys
// go to their field; everything else goes to Extra.
func (t *Task) absorb(m map[string]interface{}) {
	*t = Task{}
	for k, v := range m {
		if f := t.field(k); f != nil {
			if s, ok := v.(string); ok {
				*f = s
				continue
			}
		}
		if t.Extra == nil {
			t.Extra = map[string]interface{}{}
		}
		t.Extra[k] = v
	}
}

// toD lays the task out as a document: modelled keys first, then Extra in
// key order. A set field wins over an Extra entry of the same key; an empty
// description or deadline is omitted.
func (t Task) toD() bson.D {
	d := bson.D{}
	written := map[string]bool{}
	for _, k := range taskKeys {
		v := *t.field(k)
		if v == "" {
			if _, kept := t.Extra[k]; kept || k == "description" || k == "deadline" {
				continue
			}
		}
		d = append(d, bson.E{Key: k, Value: v})
		written[k] = true
	}

	extra := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		if !written[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		d = append(d, bson.E{Key: k, Value: t.Extra[k]})
	}
	return d
}

func (t Task) MarshalBSON() ([]byte, error) {
	return bson.Marshal(t.toD())
}

func (t *Task) UnmarshalBSON(data []byte) error {
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return err
	}
	t.absorb(m)
	return nil
}

// UnmarshalBSONValue decodes a task nested in a bucket. It accepts an
// embedded document, or null for an empty task.
func (t *Task) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	switch typ {
	case bson.TypeEmbeddedDocument:
		return t.UnmarshalBSON(data)
	case bson.TypeNull:
		*t = Task{}
		return nil
	}
	return fmt.Errorf("task must be a document, got %s", typ)
}

// MarshalJSON renders the task as relaxed extended JSON so values kept in
// Extra come out as plain JSON numbers, arrays and objects.
func (t Task) MarshalJSON() ([]byte, error) {
	return bson.MarshalExtJSON(t.toD(), false, false)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t.absorb(m)
	return nil
}
