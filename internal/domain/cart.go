package domain

// CartItem is one (product, quantity) pair in a user's cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Cart holds the items a user intends to order. Carts are a convenience
// store only; stock and prices are re-validated at order placement.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}
