package validation

import (
	"testing"
)

func TestCreateOrderRequest_Valid(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerID: "CUST001",
		Items: []LineItem{
			{ProductID: "PROD001", Quantity: 2},
			{ProductID: "PROD002", Quantity: 1},
		},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateOrderRequest_MissingFields(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		// CustomerID missing
		Items: []LineItem{},
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation errors for missing required fields, got nil")
	}
}

func TestCreateOrderRequest_ZeroQuantity(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerID: "CUST001",
		Items:      []LineItem{{ProductID: "PROD001", Quantity: 0}},
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for zero quantity, got nil")
	}
}

func TestCreateOrderRequest_DuplicateProduct(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerID: "CUST001",
		Items: []LineItem{
			{ProductID: "PROD001", Quantity: 1},
			{ProductID: "PROD001", Quantity: 2},
		},
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for duplicate product lines, got nil")
	}
}

func TestSettingsRequest(t *testing.T) {
	v := New()

	if err := v.Struct(SettingsRequest{APIEndpoint: "https://api.example.com", APIKey: "k"}); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}
	if err := v.Struct(SettingsRequest{APIEndpoint: "api.example.com", APIKey: "k"}); err == nil {
		t.Fatal("expected error for endpoint without scheme")
	}
	if err := v.Struct(SettingsRequest{APIEndpoint: "https://api.example.com"}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
