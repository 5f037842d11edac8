package validation

// LineItem is a single product+quantity entry of an order submission.
// Prices never travel with the request: the order service reprices every
// item from its inventory table.
type LineItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"` // must be >= 1
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	CustomerID string     `json:"customer_id" validate:"required"`      // business id for customer
	Items      []LineItem `json:"items" validate:"required,min=1,dive"` // at least one line
}

// UpdateStatusRequest is the payload for PUT /orders/:id.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SettingsRequest carries console settings updates and connectivity tests.
type SettingsRequest struct {
	APIEndpoint string `json:"api_endpoint" validate:"required,startswith=http"`
	APIKey      string `json:"api_key" validate:"required"`
	Region      string `json:"aws_region,omitempty"`
	Debug       bool   `json:"debug_mode,omitempty"`
}
