package qpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const timeout = time.Second * 15

var ErrFailedCloseResponseBody = errors.New("failed close response body")

// HTTPClientI abstracts the underlying HTTP client so tests can swap it out.
type HTTPClientI interface {
	Do(req *http.Request) (*http.Response, error)
}

// Invoice is a payment request registered with the QPay gateway. The service
// only cares about the reference it can later be resolved by.
type Invoice struct {
	InvoiceID  string `json:"invoice_id"`
	Reference  string `json:"reference"`
	PaymentURL string `json:"payment_url"`
}

type ClientI interface {
	CreateInvoice(ctx context.Context, amount int64, reference, description string) (*Invoice, error)
}

type Client struct {
	url    string
	client HTTPClientI
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type createInvoiceRequest struct {
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
}

// CreateInvoice registers a pending payment with the gateway. The gateway
// calls back to /api/payments/callback with the reference once paid.
func (c *Client) CreateInvoice(ctx context.Context, amount int64, reference, description string) (*Invoice, error) {
	body, err := json.Marshal(createInvoiceRequest{
		Amount:      amount,
		Reference:   reference,
		Description: description,
	})
	if err != nil {
		return nil, fmt.Errorf("can't marshal invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v2/invoice", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qpay request failed: %w", err)
	}
	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("qpay returned unexpected status %d", resp.StatusCode)
	}

	var invoice Invoice
	if err := json.Unmarshal(respBody, &invoice); err != nil {
		return nil, fmt.Errorf("can't parse qpay response: %w", err)
	}
	if invoice.Reference == "" {
		invoice.Reference = reference
	}
	return &invoice, nil
}

// SetClient replaces the underlying HTTP client (used in tests).
func (c *Client) SetClient(client HTTPClientI) {
	c.client = client
}
