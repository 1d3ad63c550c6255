package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name          string
		page          int
		limit         int
		total         int
		expectedPages int
	}{
		{name: "Exact pages", page: 1, limit: 20, total: 40, expectedPages: 2},
		{name: "Partial last page", page: 2, limit: 20, total: 41, expectedPages: 3},
		{name: "Empty result", page: 1, limit: 20, total: 0, expectedPages: 0},
		{name: "Zero limit", page: 1, limit: 0, total: 10, expectedPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.expectedPages, p.Pages)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, 400, "bad request")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp Response
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "bad request", resp.Message)
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, 200, map[string]string{"hello": "world"})

	assert.Equal(t, 200, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "world", body.Data["hello"])
}
