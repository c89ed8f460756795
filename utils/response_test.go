package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseWithError(rec, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"message": "Task not found"}, body)
}

func TestResponseWithJson(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseWithJson(rec, http.StatusCreated, map[string]any{"message": "ok", "count": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"ok","count":2}`, rec.Body.String())
}
