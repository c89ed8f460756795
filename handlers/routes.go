package handlers

import "net/http"

func NewRouter(h *TaskHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", Home)
	mux.HandleFunc("GET /tasks/{email}", h.ListTasks)
	mux.HandleFunc("POST /addTodoTask", h.AddTodoTask)
	mux.HandleFunc("PUT /updateTasks/{email}", h.ReplaceTasks)
	mux.HandleFunc("PATCH /updateTask/{email}", h.UpdateTask)
	mux.HandleFunc("DELETE /deleteTask/{email}", h.DeleteTask)

	return mux
}

func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Hello World!"))
}
