package models

import "time"

// OrderRequest is a purchase of a single product, built at submission time
// from the catalog row, the quantity selection, and the session name.
type OrderRequest struct {
	ProductID    int64  `json:"productId"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customerName"`
}

// OrderReceipt is the customer API's acknowledgement of a placed order.
// Decoded for confirmation and logging only; the client keeps no order
// history.
type OrderReceipt struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	ProductName  string    `json:"productName,omitempty"`
	Quantity     int       `json:"quantity"`
	CustomerName string    `json:"customerName"`
	OrderTime    time.Time `json:"orderTime,omitempty"`
}
