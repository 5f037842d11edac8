// Package draft holds an in-progress order while the operator composes it.
// A draft lives only in memory: once submitted it is discarded in favor of
// re-fetched server state.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/lkscloud/order-console/internal/apiclient"
)

var (
	// ErrFirstLinePinned: the first line is never removable, so a draft
	// always keeps at least one line.
	ErrFirstLinePinned = errors.New("first line cannot be removed")
	ErrLineNotFound    = errors.New("line not found")
	ErrUnknownProduct  = errors.New("unknown product")
)

// LineError is a field-level validation failure on one draft line. It blocks
// submission without any network call.
type LineError struct {
	LineID int
	Field  string // "product" or "quantity"
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.LineID, e.Field, e.Reason)
}

// Line is one product+quantity entry of the draft. Product is the snapshot
// captured at selection time (price, stock, description) and is never
// re-fetched afterwards; the server reprices on submission, so a stale
// snapshot only skews the client-side preview total.
type Line struct {
	ID       int
	Product  *apiclient.Product
	Quantity int
}

// Subtotal is quantity times the snapshotted price; zero while no product is
// bound.
func (l Line) Subtotal() float64 {
	if l.Product == nil {
		return 0
	}
	return float64(l.Quantity) * l.Product.Price
}

// Creator is the slice of the API client that Submit needs.
type Creator interface {
	CreateOrder(ctx context.Context, input apiclient.CreateOrderInput) (*apiclient.CreateOrderResult, error)
}

// Draft is a mutable draft order: one customer, N lines. The zero value is
// not usable; construct with New so the catalog and the initial line exist.
type Draft struct {
	CustomerID string

	catalog map[string]apiclient.Product
	lines   []Line
	nextID  int
}

// New builds an empty draft over a product catalog snapshot, starting with a
// single unbound line of quantity 1.
func New(products []apiclient.Product) *Draft {
	catalog := make(map[string]apiclient.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}
	d := &Draft{catalog: catalog}
	d.AddLine()
	return d
}

// Lines returns the current lines in order.
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// AddLine appends an empty line (no product, quantity 1) and returns its id.
func (d *Draft) AddLine() int {
	d.nextID++
	d.lines = append(d.lines, Line{ID: d.nextID, Quantity: 1})
	return d.nextID
}

// RemoveLine drops a line. The first line is pinned.
func (d *Draft) RemoveLine(lineID int) error {
	for i, l := range d.lines {
		if l.ID != lineID {
			continue
		}
		if i == 0 {
			return ErrFirstLinePinned
		}
		d.lines = append(d.lines[:i], d.lines[i+1:]...)
		return nil
	}
	return ErrLineNotFound
}

// SetLineProduct binds a line to the catalog snapshot of productID.
func (d *Draft) SetLineProduct(lineID int, productID string) error {
	product, ok := d.catalog[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	l := d.line(lineID)
	if l == nil {
		return ErrLineNotFound
	}
	snapshot := product
	l.Product = &snapshot
	return nil
}

// SetQuantity sets a line's quantity. Validation happens separately so the
// UI can reflect invalid intermediate input.
func (d *Draft) SetQuantity(lineID, quantity int) error {
	l := d.line(lineID)
	if l == nil {
		return ErrLineNotFound
	}
	l.Quantity = quantity
	return nil
}

// ValidateLine checks one line: quantity must be a positive integer and,
// once a product is bound, must not exceed the snapshotted stock.
func (d *Draft) ValidateLine(lineID int) error {
	l := d.line(lineID)
	if l == nil {
		return ErrLineNotFound
	}
	if l.Quantity <= 0 {
		return &LineError{LineID: lineID, Field: "quantity", Reason: "quantity must be at least 1"}
	}
	if l.Product != nil && l.Quantity > l.Product.StockQuantity {
		return &LineError{
			LineID: lineID,
			Field:  "quantity",
			Reason: fmt.Sprintf("only %d items in stock", l.Product.StockQuantity),
		}
	}
	return nil
}

// Total is the preview total over all lines, from the snapshotted prices.
func (d *Draft) Total() float64 {
	var total float64
	for _, l := range d.lines {
		total += l.Subtotal()
	}
	return total
}

// Validate gates submission: a customer must be selected, every line must be
// bound to a product, and every line must pass ValidateLine. The first
// violation is returned as a field-level error.
func (d *Draft) Validate() error {
	if d.CustomerID == "" {
		return &LineError{Field: "customer", Reason: "please select a customer"}
	}
	for _, l := range d.lines {
		if l.Product == nil {
			return &LineError{LineID: l.ID, Field: "product", Reason: "please select a product"}
		}
		if err := d.ValidateLine(l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Payload builds the submission body.
func (d *Draft) Payload() apiclient.CreateOrderInput {
	input := apiclient.CreateOrderInput{CustomerID: d.CustomerID}
	for _, l := range d.lines {
		if l.Product == nil {
			continue
		}
		input.Items = append(input.Items, apiclient.CreateOrderItem{
			ProductID: l.Product.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return input
}

// Submit validates locally and, only if everything passes, posts the order.
// On any precondition failure the error is returned without touching the
// network. When the server echoes a total, a cent-level mismatch with the
// preview total is logged: it means a product price changed between catalog
// load and submission.
func (d *Draft) Submit(ctx context.Context, creator Creator) (*apiclient.CreateOrderResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	result, err := creator.CreateOrder(ctx, d.Payload())
	if err != nil {
		return nil, err
	}

	if result.TotalAmount != 0 && cents(result.TotalAmount) != cents(d.Total()) {
		log.Printf("[draft] server total %.2f differs from preview %.2f for order %s (stale catalog price)",
			result.TotalAmount, d.Total(), result.OrderID)
	}
	return result, nil
}

func (d *Draft) line(lineID int) *Line {
	for i := range d.lines {
		if d.lines[i].ID == lineID {
			return &d.lines[i]
		}
	}
	return nil
}

// cents compares money without float noise.
func cents(v float64) int {
	return int(math.Round(v * 100))
}
