package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"taskly/models"
	"taskly/services"
	"taskly/utils"
)

type TaskHandler struct {
	tasks   *services.TaskStore
	timeout time.Duration
}

func NewTaskHandler(tasks *services.TaskStore, timeout time.Duration) *TaskHandler {
	return &TaskHandler{tasks: tasks, timeout: timeout}
}

type addTaskRequest struct {
	Email string            `json:"email"`
	Data  *models.TaskInput `json:"data"`
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	docs, err := h.tasks.ListTasks(ctx, r.PathValue("email"))
	if errors.Is(err, services.ErrTasksNotFound) {
		utils.ResponseWithError(w, http.StatusNotFound, "Tasks not found for the email")
		return
	}
	if err != nil {
		log.Printf("Error retrieving tasks: %v", err)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}

	utils.ResponseWithJson(w, http.StatusOK, map[string]interface{}{"tasks": docs})
}

func (h *TaskHandler) AddTodoTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Data == nil {
		log.Printf("Error adding task to todo: request for %q has no data", req.Email)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to add task to todo")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	result, err := h.tasks.AddTask(ctx, req.Email, *req.Data)
	if err != nil {
		log.Printf("Error adding task to todo: %v", err)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to add task to todo")
		return
	}

	if result.Created {
		utils.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
			"message": "Task Inserted",
			"newData": result.Document,
		})
		return
	}
	utils.ResponseWithJson(w, http.StatusCreated, map[string]interface{}{
		"message": "Task added to todo list",
		"task":    result.Task,
	})
}

func (h *TaskHandler) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	err := h.tasks.ReplaceAllTasks(ctx, r.PathValue("email"), bson.M(body))
	if errors.Is(err, services.ErrInvalidDocument) {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid task document")
		return
	}
	if errors.Is(err, services.ErrDocumentNotFound) {
		utils.ResponseWithError(w, http.StatusNotFound, "Document not found for the email")
		return
	}
	if err != nil {
		log.Printf("Error updating tasks: %v", err)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to update tasks")
		return
	}

	utils.ResponseWithJson(w, http.StatusOK, map[string]string{"message": "Tasks updated"})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	doc, err := h.tasks.UpdateTask(ctx, r.PathValue("email"), patch)
	if err != nil {
		h.mutationError(w, "Failed to update task", err)
		return
	}

	utils.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
		"message":  "Task updated",
		"document": doc,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	var ref models.TaskRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	doc, err := h.tasks.DeleteTask(ctx, r.PathValue("email"), ref)
	if err != nil {
		h.mutationError(w, "Failed to delete task", err)
		return
	}

	utils.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
		"message":  "Task deleted",
		"document": doc,
	})
}

// mutationError maps single-task update/delete failures to responses.
func (h *TaskHandler) mutationError(w http.ResponseWriter, failure string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid status value")
	case errors.Is(err, services.ErrDocumentNotFound):
		utils.ResponseWithError(w, http.StatusNotFound, "Document not found for the email")
	case errors.Is(err, services.ErrTaskNotFound):
		utils.ResponseWithError(w, http.StatusNotFound, "Task not found")
	default:
		log.Printf("%s: %v", failure, err)
		utils.ResponseWithError(w, http.StatusInternalServerError, failure)
	}
}

func (h *TaskHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}
