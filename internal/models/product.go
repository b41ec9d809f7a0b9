package models

// Product is one entry of the customer API's catalog listing.
// The client holds a read-only snapshot; stock and price are owned by the
// backend and only change from the client's point of view via a fresh fetch.
type Product struct {
	ID          int64   `json:"id"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
