package qpay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateInvoice(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		expectError bool
		expectedID  string
	}{
		{
			name: "Successful invoice",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v2/invoice", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"invoice_id":"INV-1","reference":"ref-1","payment_url":"https://qpay.mn/pay/INV-1"}`))
			},
			expectedID: "INV-1",
		},
		{
			name: "Gateway error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: true,
		},
		{
			name: "Malformed response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL)
			invoice, err := client.CreateInvoice(context.Background(), 5000, "ref-1", "deposit")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, invoice)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, invoice.InvoiceID)
				assert.Equal(t, "ref-1", invoice.Reference)
			}
		})
	}
}
