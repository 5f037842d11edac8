package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lkscloud/order-console/internal/config"
)

type recordingSink struct {
	recs []CallRecord
}

func (s *recordingSink) RecordCall(rec CallRecord) { s.recs = append(s.recs, rec) }

func settingsFor(srv *httptest.Server) config.Settings {
	// Trailing slash on purpose: the client must strip it before joining.
	return config.Settings{APIEndpoint: srv.URL + "/", APIKey: "test-key"}
}

func TestCall_Success(t *testing.T) {
	var gotKey, gotAccept, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-Id")
		if r.URL.Path != "/orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"orders":[]}`))
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := New(settingsFor(srv), sink)

	raw, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if string(raw) != `{"orders":[]}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if gotKey != "test-key" {
		t.Fatalf("x-api-key not sent, got %q", gotKey)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept not sent, got %q", gotAccept)
	}
	if gotRequestID == "" {
		t.Fatalf("expected correlation id header")
	}
	if len(sink.recs) != 1 {
		t.Fatalf("expected 1 sink record, got %d", len(sink.recs))
	}
	rec := sink.recs[0]
	if !rec.Succeeded() || rec.StatusCode != http.StatusOK {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Duration < 0 {
		t.Fatalf("negative duration")
	}
}

func TestCall_EmptyBodyYieldsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(settingsFor(srv), nil)
	raw, err := c.Call(context.Background(), http.MethodDelete, "/orders/abc", nil)
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("expected empty object, got %s", raw)
	}
}

func TestCall_ForbiddenSurfacesKeyProblem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Forbidden"}`))
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := New(settingsFor(srv), sink)

	_, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("status mismatch: %d", httpErr.StatusCode)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "API key") {
		t.Fatalf("403 user message should point at the key, got %q", msg)
	}
	if len(sink.recs) != 1 || sink.recs[0].Succeeded() {
		t.Fatalf("failure must be recorded to the sink")
	}
}

func TestCall_ErrorBodyExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Internal server error","error":"relation orders does not exist"}`))
	}))
	defer srv.Close()

	c := New(settingsFor(srv), nil)
	_, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if !strings.Contains(httpErr.Message, "Internal server error") ||
		!strings.Contains(httpErr.Message, "relation orders does not exist") {
		t.Fatalf("message/error fields not extracted: %q", httpErr.Message)
	}
}

func TestCall_NonJSONBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	c := New(settingsFor(srv), nil)
	_, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "Invalid response") {
		t.Fatalf("unexpected user message %q", msg)
	}
}

func TestCall_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	sink := &recordingSink{}
	c := New(settingsFor(srv), sink)
	_, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "Network error") {
		t.Fatalf("unexpected user message %q", msg)
	}
	if len(sink.recs) != 1 {
		t.Fatalf("transport failure must be recorded")
	}
}

func TestCall_UnconfiguredMakesNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	sink := &recordingSink{}
	for _, settings := range []config.Settings{
		{APIKey: "key-only"},
		{APIEndpoint: srv.URL},
	} {
		c := New(settings, sink)
		_, err := c.Call(context.Background(), http.MethodGet, "/orders", nil)
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *ConfigurationError for %+v, got %v", settings, err)
		}
	}
	if requests != 0 {
		t.Fatalf("expected zero network calls, saw %d", requests)
	}
	if len(sink.recs) != 0 {
		t.Fatalf("configuration failures precede any call, nothing to record")
	}
}

func TestListOrders_Query(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"orders":[{"order_id":"o1","customer_id":"c1","status":"pending","total_amount":10.5}],"pagination":{"page":2,"limit":10,"total":31,"pages":4}}`))
	}))
	defer srv.Close()

	c := New(settingsFor(srv), nil)
	list, err := c.ListOrders(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListOrders error: %v", err)
	}
	if gotQuery != "limit=10&page=2" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(list.Orders) != 1 || list.Orders[0].OrderID != "o1" {
		t.Fatalf("orders not decoded: %+v", list.Orders)
	}
	if list.Pagination.Total != 31 || list.Pagination.Pages != 4 {
		t.Fatalf("pagination not decoded: %+v", list.Pagination)
	}
}

func TestCreateOrder_PostsPayload(t *testing.T) {
	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Order created successfully","order_id":"o-9","execution_arn":"arn:aws:states:us-east-1:1:execution:wf:order-o-9"}`))
	}))
	defer srv.Close()

	c := New(settingsFor(srv), nil)
	result, err := c.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: "CUST001",
		Items:      []CreateOrderItem{{ProductID: "PROD001", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotBody != `{"customer_id":"CUST001","items":[{"product_id":"PROD001","quantity":2}]}` {
		t.Fatalf("unexpected payload %s", gotBody)
	}
	if result.OrderID != "o-9" || result.ExecutionARN == "" {
		t.Fatalf("response not decoded: %+v", result)
	}
}

func TestStatusSeverity(t *testing.T) {
	cases := map[string]string{
		StatusPending:    "warning",
		StatusProcessing: "info",
		StatusCompleted:  "success",
		StatusDelivered:  "success",
		StatusCancelled:  "danger",
		StatusFailed:     "danger",
		StatusShipped:    "primary",
		"refunded":       "secondary",
		"":               "secondary",
	}
	for status, want := range cases {
		if got := StatusSeverity(status); got != want {
			t.Fatalf("StatusSeverity(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 50); got != "short" {
		t.Fatalf("short strings must pass through, got %q", got)
	}
	long := strings.Repeat("x", 80)
	got := Truncate(long, 50)
	if len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
}
