package apiclient

// Order statuses as the remote API reports them. The set is open-ended:
// anything unrecognized renders with the secondary severity.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusFailed     = "failed"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// Workflow execution statuses (Step Functions vocabulary upstream).
const (
	WorkflowRunning   = "RUNNING"
	WorkflowSucceeded = "SUCCEEDED"
	WorkflowFailed    = "FAILED"
	WorkflowTimedOut  = "TIMED_OUT"
	WorkflowAborted   = "ABORTED"
)

// Timestamps stay strings throughout: the upstream emits bare ISO-8601
// without a zone offset, which time.Time refuses to decode.

// Order is a persisted order as returned by the remote API. List responses
// omit items; GET /orders/{id} includes them.
type Order struct {
	OrderID      string      `json:"order_id"`
	CustomerID   string      `json:"customer_id"`
	Status       string      `json:"status"`
	TotalAmount  float64     `json:"total_amount"`
	CreatedAt    string      `json:"created_at,omitempty"`
	UpdatedAt    string      `json:"updated_at,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
	ExecutionARN string      `json:"execution_arn,omitempty"`
}

// OrderItem is one product+quantity line of a persisted order, with the price
// snapshotted server-side at order time.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Customer struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

type Product struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
}

// Pagination mirrors the remote list envelope.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// OrderList is the GET /orders response.
type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// CreateOrderInput is the POST /orders payload. The server reprices items
// from its inventory; the client never sends prices.
type CreateOrderInput struct {
	CustomerID string             `json:"customer_id"`
	Items      []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderResult is the POST /orders response.
type CreateOrderResult struct {
	Message      string  `json:"message,omitempty"`
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status,omitempty"`
	TotalAmount  float64 `json:"total_amount,omitempty"`
	ExecutionARN string  `json:"execution_arn,omitempty"`
}

// MutationResult is the PUT/DELETE /orders/{id} response.
type MutationResult struct {
	Message string `json:"message,omitempty"`
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

// WorkflowStatus is the GET /status/{ref} response describing one workflow
// execution. Input and Output are opaque payloads passed through untouched.
type WorkflowStatus struct {
	Status        string `json:"status"`
	ExecutionName string `json:"execution_name,omitempty"`
	ExecutionARN  string `json:"execution_arn,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	StopDate      string `json:"stop_date,omitempty"`
	Input         any    `json:"input,omitempty"`
	Output        any    `json:"output,omitempty"`
}

// StatusSeverity maps an order status onto a display severity band.
// Unrecognized statuses fall back to "secondary".
func StatusSeverity(status string) string {
	switch status {
	case StatusPending:
		return "warning"
	case StatusProcessing:
		return "info"
	case StatusCompleted, StatusDelivered:
		return "success"
	case StatusCancelled, StatusFailed:
		return "danger"
	case StatusShipped:
		return "primary"
	default:
		return "secondary"
	}
}
