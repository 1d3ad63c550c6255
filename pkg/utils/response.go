package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the error envelope returned to the mobile client.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Success: false, Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	writeJSON(w, code, envelope{Success: true, Data: payload})
}

// RespondWithPage wraps a list payload together with pagination metadata.
func RespondWithPage(w http.ResponseWriter, code int, payload any, p *Pagination) {
	writeJSON(w, code, envelope{Success: true, Data: payload, Pagination: p})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("can't encode response", zap.Error(err))
	}
}
