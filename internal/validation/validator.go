package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// A product may appear in at most one line of an order; quantities for
	// the same product belong on a single line.
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return v
}

func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	seen := map[string]bool{}
	for _, it := range req.Items {
		if it.ProductID == "" {
			continue // caught by the field rule
		}
		if seen[it.ProductID] {
			sl.ReportError(req.Items, "items", "Items", "unique_product", it.ProductID)
			return
		}
		seen[it.ProductID] = true
	}
}
