package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/lkscloud/order-console/internal/activity"
	"github.com/lkscloud/order-console/internal/apiclient"
	"github.com/lkscloud/order-console/internal/config"
	"github.com/lkscloud/order-console/internal/draft"
	"github.com/lkscloud/order-console/internal/validation"
	"github.com/lkscloud/order-console/internal/views"
)

// ConsoleConfig groups the console's dependencies.
type ConsoleConfig struct {
	Store *config.Store
	Feed  *activity.Feed
	Sink  apiclient.Sink // fan-out: activity feed plus optional metrics
}

// Console owns the currently active API client. Settings updates swap in a
// fresh client built from the new immutable snapshot; in-flight requests
// keep the client they started with.
type Console struct {
	cfg ConsoleConfig
	v   *validatorv10.Validate

	mu        sync.RWMutex
	client    *apiclient.Client
	refresher *views.Refresher
}

// NewConsole builds the console around the initial settings.
func NewConsole(cfg ConsoleConfig, initial config.Settings) *Console {
	h := &Console{cfg: cfg, v: validation.New()}
	h.swap(initial)
	return h
}

// Register wires all console routes.
func (h *Console) Register(r *gin.Engine) {
	r.GET("/dashboard", h.dashboard)
	r.GET("/orders", h.orders)
	r.GET("/orders/:id", h.orderDetail)
	r.POST("/orders", h.createOrder)
	r.PUT("/orders/:id", h.updateOrderStatus)
	r.DELETE("/orders/:id", h.deleteOrder)
	r.GET("/customers", h.customers)
	r.GET("/products", h.products)
	r.GET("/monitor", h.monitor)
	r.GET("/status/:ref", h.workflowStatus)
	r.GET("/settings", h.getSettings)
	r.PUT("/settings", h.putSettings)
	r.DELETE("/settings", h.clearSettings)
	r.POST("/settings/test", h.testSettings)
}

func (h *Console) swap(settings config.Settings) {
	client := apiclient.New(settings, h.cfg.Sink)
	h.mu.Lock()
	h.client = client
	h.refresher = views.NewRefresher(client)
	h.mu.Unlock()
}

func (h *Console) current() (*apiclient.Client, *views.Refresher) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client, h.refresher
}

func (h *Console) dashboard(c *gin.Context) {
	_, refresher := h.current()
	summary, err := refresher.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Console) orders(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	_, refresher := h.current()
	result, err := refresher.Orders(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Console) orderDetail(c *gin.Context) {
	client, refresher := h.current()
	order, err := client.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	payload := gin.H{
		"order":    order,
		"severity": apiclient.StatusSeverity(order.Status),
	}
	// Workflow enrichment is best effort: a missing execution must not break
	// the detail view.
	if order.ExecutionARN != "" {
		if workflow, wErr := refresher.Workflow(c.Request.Context(), order.ExecutionARN); wErr == nil {
			payload["workflow"] = workflow
		}
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Console) createOrder(c *gin.Context) {
	var req validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	client, _ := h.current()
	products, err := client.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	d := draft.New(products)
	d.CustomerID = req.CustomerID
	for i, item := range req.Items {
		lineID := d.Lines()[0].ID
		if i > 0 {
			lineID = d.AddLine()
		}
		if err := d.SetLineProduct(lineID, item.ProductID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "validation_failed",
				"fields": map[string]string{
					"items": "unknown product " + item.ProductID,
				},
			})
			return
		}
		d.SetQuantity(lineID, item.Quantity)
	}

	result, err := d.Submit(c.Request.Context(), client)
	if err != nil {
		var lineErr *draft.LineError
		if errors.As(err, &lineErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation_failed",
				"fields": map[string]string{lineErr.Field: lineErr.Reason},
			})
			return
		}
		h.fail(c, err)
		return
	}

	h.cfg.Feed.Add("Order created: "+result.OrderID, activity.LevelSuccess)
	c.JSON(http.StatusCreated, gin.H{
		"order":         result,
		"preview_total": d.Total(),
	})
}

func (h *Console) updateOrderStatus(c *gin.Context) {
	var req validation.UpdateStatusRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	client, _ := h.current()
	result, err := client.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Console) deleteOrder(c *gin.Context) {
	client, _ := h.current()
	result, err := client.DeleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Console) customers(c *gin.Context) {
	client, _ := h.current()
	customers, err := client.ListCustomers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Console) products(c *gin.Context) {
	client, _ := h.current()
	products, err := client.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Console) monitor(c *gin.Context) {
	_, refresher := h.current()
	report := refresher.Monitor(c.Request.Context())

	if report.Band == views.BandUnreachable {
		h.cfg.Feed.Add("System check failed: "+report.Error, activity.LevelError)
	} else {
		h.cfg.Feed.Add("System check - API responding ("+strconv.FormatInt(report.LatencyMS, 10)+"ms)", activity.LevelSuccess)
	}

	payload := gin.H{
		"report":   report,
		"activity": h.cfg.Feed.Entries(),
	}
	if latency, ok := h.cfg.Feed.LastLatency(); ok {
		payload["last_response_ms"] = latency.Milliseconds()
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Console) workflowStatus(c *gin.Context) {
	_, refresher := h.current()
	report, err := refresher.Workflow(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Console) getSettings(c *gin.Context) {
	client, _ := h.current()
	settings := client.Settings()
	c.JSON(http.StatusOK, gin.H{
		"api_endpoint": settings.APIEndpoint,
		"api_key":      settings.MaskedKey(),
		"aws_region":   settings.Region,
		"debug_mode":   settings.Debug,
		"configured":   settings.Configured(),
	})
}

func (h *Console) putSettings(c *gin.Context) {
	var req validation.SettingsRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	saved, err := h.cfg.Store.Save(config.Settings{
		APIEndpoint: req.APIEndpoint,
		APIKey:      req.APIKey,
		Region:      req.Region,
		Debug:       req.Debug,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_settings", "message": err.Error()})
		return
	}

	h.swap(saved)
	h.cfg.Feed.Add("Settings updated", activity.LevelInfo)
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved successfully", "configured": saved.Configured()})
}

func (h *Console) clearSettings(c *gin.Context) {
	cleared, err := h.cfg.Store.Clear()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear_failed", "message": err.Error()})
		return
	}
	h.swap(cleared)
	h.cfg.Feed.Add("All settings cleared", activity.LevelInfo)
	c.JSON(http.StatusOK, gin.H{"message": "All settings cleared", "configured": false})
}

// testSettings probes the API with the supplied, unsaved values: a single
// limit=1 call reporting status, latency and how many orders came back.
func (h *Console) testSettings(c *gin.Context) {
	var req validation.SettingsRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	probe := apiclient.New(config.Settings{
		APIEndpoint: req.APIEndpoint,
		APIKey:      req.APIKey,
	}, nil)

	start := time.Now()
	list, err := probe.ListOrders(c.Request.Context(), 0, 1)
	latency := time.Since(start)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"ok":         false,
			"latency_ms": latency.Milliseconds(),
			"message":    apiclient.UserMessage(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"latency_ms":   latency.Milliseconds(),
		"orders_found": len(list.Orders),
	})
}

// fail converts a client error into the transient JSON notification. The
// sink has already put the call on the activity feed; nothing here is fatal
// and the operation can simply be retried.
func (h *Console) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var cfgErr *apiclient.ConfigurationError
	var httpErr *apiclient.HTTPError
	var netErr *apiclient.NetworkError
	var decErr *apiclient.DecodeError
	switch {
	case errors.As(err, &cfgErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &httpErr):
		status = httpErr.StatusCode
	case errors.As(err, &netErr), errors.As(err, &decErr):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": "api_call_failed", "message": apiclient.UserMessage(err)})
}
