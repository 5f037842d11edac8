package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lkscloud/order-console/internal/config"
)

// CallRecord describes one completed (or failed) API round trip, as handed to
// the observability sink.
type CallRecord struct {
	Time          time.Time
	Method        string
	Path          string
	StatusCode    int
	Duration      time.Duration
	CorrelationID string
	Err           error
}

// Succeeded reports whether the call completed with a usable response.
func (r CallRecord) Succeeded() bool { return r.Err == nil }

// Sink receives one record per API call, success or failure.
type Sink interface {
	RecordCall(rec CallRecord)
}

// MultiSink fans records out to several sinks.
type MultiSink []Sink

func (m MultiSink) RecordCall(rec CallRecord) {
	for _, s := range m {
		s.RecordCall(rec)
	}
}

// Client talks to the remote order-management API. It is immutable: settings
// are fixed at construction and a settings update means building a new Client.
// Calls are single-attempt with no retry; the only timeout is whatever the
// transport imposes.
type Client struct {
	settings   config.Settings
	httpClient *http.Client
	sink       Sink
	nowFunc    func() time.Time
}

// New builds a Client from an immutable settings snapshot. sink may be nil.
func New(settings config.Settings, sink Sink) *Client {
	return &Client{
		settings:   settings,
		httpClient: &http.Client{},
		sink:       sink,
		nowFunc:    time.Now,
	}
}

// Settings returns the snapshot this client was built with.
func (c *Client) Settings() config.Settings { return c.settings }

// Call issues one HTTP request against the configured endpoint and returns
// the raw JSON response. An empty 2xx body yields an empty JSON object.
// Failures come back as one of *ConfigurationError, *NetworkError,
// *HTTPError or *DecodeError; every failure past the configuration check is
// reported to the sink before being returned.
func (c *Client) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if c.settings.APIEndpoint == "" {
		return nil, &ConfigurationError{Missing: "api_endpoint"}
	}
	if c.settings.APIKey == "" {
		return nil, &ConfigurationError{Missing: "api_key"}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	fullURL := strings.TrimSuffix(c.settings.APIEndpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.settings.APIKey)
	correlationID := uuid.NewString()
	req.Header.Set("X-Request-Id", correlationID)

	rec := CallRecord{
		Time:          c.nowFunc(),
		Method:        method,
		Path:          path,
		CorrelationID: correlationID,
	}

	start := c.nowFunc()
	resp, err := c.httpClient.Do(req)
	rec.Duration = c.nowFunc().Sub(start)
	if err != nil {
		rec.Err = &NetworkError{URL: fullURL, Err: err}
		c.record(rec)
		return nil, rec.Err
	}
	defer resp.Body.Close()
	rec.StatusCode = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		rec.Err = &NetworkError{URL: fullURL, Err: err}
		c.record(rec)
		return nil, rec.Err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rec.Err = &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(raw, resp.StatusCode),
		}
		c.record(rec)
		return nil, rec.Err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		rec.Err = &DecodeError{Snippet: Truncate(string(raw), 100)}
		c.record(rec)
		return nil, rec.Err
	}

	c.record(rec)
	return json.RawMessage(raw), nil
}

func (c *Client) record(rec CallRecord) {
	if c.settings.Debug {
		if rec.Err != nil {
			log.Printf("[apiclient] %s %s failed after %s: %v", rec.Method, rec.Path, rec.Duration, rec.Err)
		} else {
			log.Printf("[apiclient] %s %s -> %d (%s)", rec.Method, rec.Path, rec.StatusCode, rec.Duration)
		}
	}
	if c.sink != nil {
		c.sink.RecordCall(rec)
	}
}

// get issues a GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	raw, err := c.Call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ListOrders fetches one page of orders. page <= 0 omits the page parameter,
// matching the dashboard's limit-only query.
func (c *Client) ListOrders(ctx context.Context, page, limit int) (*OrderList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	q.Set("limit", strconv.Itoa(limit))

	var list OrderList
	if err := c.get(ctx, "/orders?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetOrder fetches a single order with its items.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.get(ctx, "/orders/"+url.PathEscape(orderID), &order); err != nil {
		return nil, err
	}
	if order.OrderID == "" {
		order.OrderID = orderID
	}
	return &order, nil
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	raw, err := c.Call(ctx, http.MethodPost, "/orders", input)
	if err != nil {
		return nil, err
	}
	var result CreateOrderResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	return &result, nil
}

// UpdateOrderStatus sets a new status on an existing order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (*MutationResult, error) {
	raw, err := c.Call(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID), map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	var result MutationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode update response: %w", err)
	}
	return &result, nil
}

// DeleteOrder removes an order permanently.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) (*MutationResult, error) {
	raw, err := c.Call(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}
	var result MutationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode delete response: %w", err)
	}
	return &result, nil
}

// ListCustomers fetches all customers for the order form.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var payload struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.get(ctx, "/customers", &payload); err != nil {
		return nil, err
	}
	return payload.Customers, nil
}

// ListProducts fetches the product catalog for the order form.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, "/products", &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// GetWorkflowStatus looks up the workflow execution for an order id or
// execution reference.
func (c *Client) GetWorkflowStatus(ctx context.Context, ref string) (*WorkflowStatus, error) {
	var status WorkflowStatus
	if err := c.get(ctx, "/status/"+url.PathEscape(ref), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
