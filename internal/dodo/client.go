package dodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the payments API. It is constructed once in main with the
// mode-resolved key and base URL and injected into the checkout service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// APIError carries the provider's status and message so handlers can surface
// the message text and nothing else.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dodo: api error %d: %s", e.StatusCode, e.Message)
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreatePayment creates a payment session with a hosted payment link.
func (c *Client) CreatePayment(ctx context.Context, req *PaymentRequest) (*Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payment, nil
}

// ListSupportedCountries returns the country codes the provider accepts for
// billing. Looked up once at startup and cached by the caller.
func (c *Client) ListSupportedCountries(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout/supported_countries", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var countries countryListResponse
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return countries, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			msg = payload.Message
		} else {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = string(body)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
