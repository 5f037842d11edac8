// Package views builds the read models behind the console tabs. Every
// refresh here is idempotent: safe to call repeatedly and from any state.
package views

import (
	"context"
	"strings"
	"time"

	"github.com/lkscloud/order-console/internal/apiclient"
)

const (
	// dashboardSampleLimit bounds the dashboard aggregate. Revenue and
	// status counts are computed over this sample only.
	dashboardSampleLimit = 100
	ordersPageSize       = 10
	probeLimit           = 1
)

// Latency bands for the connectivity monitor.
const (
	BandHealthy     = "healthy"   // < 500ms
	BandDegraded    = "degraded"  // < 1000ms
	BandUnhealthy   = "unhealthy" // >= 1000ms
	BandUnreachable = "unreachable"
)

// API is the slice of the client the refreshers consume.
type API interface {
	ListOrders(ctx context.Context, page, limit int) (*apiclient.OrderList, error)
	GetWorkflowStatus(ctx context.Context, ref string) (*apiclient.WorkflowStatus, error)
}

// Refresher produces the dashboard, order-list and monitor read models.
type Refresher struct {
	api     API
	nowFunc func() time.Time
}

func NewRefresher(api API) *Refresher {
	return &Refresher{api: api, nowFunc: time.Now}
}

// DashboardSummary aggregates over a sample of up to 100 orders. TotalOrders
// prefers the server-side pagination total; the other figures are sampled.
type DashboardSummary struct {
	TotalOrders     int               `json:"total_orders"`
	PendingOrders   int               `json:"pending_orders"`
	CompletedOrders int               `json:"completed_orders"`
	TotalRevenue    float64           `json:"total_revenue"`
	SampleSize      int               `json:"sample_size"`
	RecentOrders    []apiclient.Order `json:"recent_orders"`
}

// Dashboard fetches up to 100 orders and derives the summary figures.
func (r *Refresher) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	list, err := r.api.ListOrders(ctx, 0, dashboardSampleLimit)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{SampleSize: len(list.Orders)}
	if list.Pagination.Total > 0 {
		summary.TotalOrders = list.Pagination.Total
	} else {
		summary.TotalOrders = len(list.Orders)
	}
	for _, o := range list.Orders {
		summary.TotalRevenue += o.TotalAmount
		switch o.Status {
		case apiclient.StatusPending:
			summary.PendingOrders++
		case apiclient.StatusCompleted, apiclient.StatusDelivered:
			summary.CompletedOrders++
		}
	}

	recent := list.Orders
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summary.RecentOrders = recent
	return summary, nil
}

// OrdersPage is one page of the order list.
type OrdersPage struct {
	Orders     []apiclient.Order    `json:"orders"`
	Page       int                  `json:"page"`
	Pagination apiclient.Pagination `json:"pagination"`
}

// Orders fetches a fixed-size page. Pages below 1 clamp to 1, so paging
// backwards off the start is a no-op.
func (r *Refresher) Orders(ctx context.Context, page int) (*OrdersPage, error) {
	if page < 1 {
		page = 1
	}
	list, err := r.api.ListOrders(ctx, page, ordersPageSize)
	if err != nil {
		return nil, err
	}
	resolved := list.Pagination.Page
	if resolved == 0 {
		resolved = page
	}
	return &OrdersPage{Orders: list.Orders, Page: resolved, Pagination: list.Pagination}, nil
}

// MonitorReport is the result of one connectivity probe.
type MonitorReport struct {
	Band      string    `json:"band"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor issues a minimal limit=1 probe purely to measure latency and
// reachability.
func (r *Refresher) Monitor(ctx context.Context) *MonitorReport {
	report := &MonitorReport{CheckedAt: r.nowFunc()}

	start := r.nowFunc()
	_, err := r.api.ListOrders(ctx, 0, probeLimit)
	latency := r.nowFunc().Sub(start)
	report.LatencyMS = latency.Milliseconds()

	if err != nil {
		report.Band = BandUnreachable
		report.Error = apiclient.UserMessage(err)
		return report
	}
	report.Band = ClassifyLatency(latency)
	return report
}

// ClassifyLatency maps a probe round trip onto a health band.
func ClassifyLatency(d time.Duration) string {
	switch {
	case d < 500*time.Millisecond:
		return BandHealthy
	case d < time.Second:
		return BandDegraded
	default:
		return BandUnhealthy
	}
}

// WorkflowReport is a workflow execution with its display classification.
type WorkflowReport struct {
	apiclient.WorkflowStatus
	Severity string `json:"severity"`
	Known    bool   `json:"known"`
}

// Workflow looks up and classifies a workflow execution by order id or
// execution reference.
func (r *Refresher) Workflow(ctx context.Context, ref string) (*WorkflowReport, error) {
	status, err := r.api.GetWorkflowStatus(ctx, ref)
	if err != nil {
		return nil, err
	}
	severity, known := ClassifyWorkflow(status.Status)
	return &WorkflowReport{WorkflowStatus: *status, Severity: severity, Known: known}, nil
}

// ClassifyWorkflow maps a workflow status onto a display severity. Anything
// outside the five known states is unknown/secondary.
func ClassifyWorkflow(status string) (severity string, known bool) {
	switch strings.ToUpper(status) {
	case apiclient.WorkflowRunning:
		return "info", true
	case apiclient.WorkflowSucceeded:
		return "success", true
	case apiclient.WorkflowFailed:
		return "danger", true
	case apiclient.WorkflowTimedOut:
		return "warning", true
	case apiclient.WorkflowAborted:
		return "dark", true
	default:
		return "secondary", false
	}
}
