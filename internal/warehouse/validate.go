package warehouse

import "strings"

const (
	maxNameLen        = 100
	maxDescriptionLen = 300
)

type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Validate merapikan name (trim) dan menolak field di luar batas.
func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len([]rune(in.Name)) > maxNameLen {
		return &ValidationError{Field: "name", Reason: "must be at most 100 characters"}
	}
	if in.Description != nil && len([]rune(*in.Description)) > maxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "must be at most 300 characters"}
	}
	if in.Price <= 0 {
		return &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if in.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}

type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderInput struct {
	CustomerName string           `json:"customer_name"`
	Items        []OrderItemInput `json:"items"`
}

func (in *OrderInput) Validate() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Reason: "must not be empty"}
	}
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	}
	return nil
}
