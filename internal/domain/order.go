package domain

import (
	"time"
)

// Pricing policy constants. Prices are in cents.
const (
	// FreeShippingThreshold is the items subtotal at or above which
	// shipping is free.
	FreeShippingThreshold int64 = 100_00
	// FlatShippingPrice applies below the free-shipping threshold.
	FlatShippingPrice int64 = 10_00
	// TaxRateBasisPoints is the tax rate applied to the items subtotal,
	// in basis points (1500 = 15%).
	TaxRateBasisPoints int64 = 1500
)

// ShippingAddress is the delivery destination captured at order time.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentResult holds the metadata reported by the payment collaborator
// when an order is marked paid.
type PaymentResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Email  string `json:"email"`
}

// OrderItem is one line of an order. Name, ImageURL, and Price are
// snapshots taken from the catalog at order time, so historical orders
// stay immutable against later catalog edits.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
}

// LineTotal returns price times quantity for this line.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Qty)
}

// Order represents a placed order. Once created, line items and totals are
// immutable; only the paid/delivered flags and their timestamps transition,
// each exactly once.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      int64           `json:"items_price"`
	ShippingPrice   int64           `json:"shipping_price"`
	TaxPrice        int64           `json:"tax_price"`
	TotalPrice      int64           `json:"total_price"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ComputeTotals fills in the derived price fields from the order items.
// Items subtotal is summed from line totals; shipping is flat below the
// free-shipping threshold; tax is rounded half-up to a cent.
func (o *Order) ComputeTotals() {
	var items int64
	for i := range o.Items {
		items += o.Items[i].LineTotal()
	}
	o.ItemsPrice = items

	if items >= FreeShippingThreshold {
		o.ShippingPrice = 0
	} else {
		o.ShippingPrice = FlatShippingPrice
	}

	o.TaxPrice = (items*TaxRateBasisPoints + 5000) / 10000
	o.TotalPrice = o.ItemsPrice + o.ShippingPrice + o.TaxPrice
}
