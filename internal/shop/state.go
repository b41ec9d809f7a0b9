package shop

import "github.com/inventory-demo/customer-shop/internal/models"

// State is the whole client-side application state: session, catalog
// snapshot, and per-product quantity selections. Values are immutable;
// every transition returns a new State and never mutates the receiver,
// so a snapshot handed to a caller stays valid.
type State struct {
	LoggedIn     bool
	CustomerName string
	Products     []models.Product
	Quantities   map[int64]int
}

// NewState returns the initial, logged-out state.
func NewState() State {
	return State{}
}

// WithLogin returns the state after the login transition. Name validation
// is the controller's job; this is the pure transition only.
func (s State) WithLogin(name string) State {
	next := s
	next.LoggedIn = true
	next.CustomerName = name
	return next
}

// WithCatalog returns the state with the product snapshot replaced
// wholesale. No merging: the fetch result is the new truth.
func (s State) WithCatalog(products []models.Product) State {
	next := s
	next.Products = make([]models.Product, len(products))
	copy(next.Products, products)
	return next
}

// WithQuantity returns the state with the selection for one product
// replaced. Last write per product wins; other selections are untouched.
func (s State) WithQuantity(productID int64, qty int) State {
	next := s
	next.Quantities = make(map[int64]int, len(s.Quantities)+1)
	for id, q := range s.Quantities {
		next.Quantities[id] = q
	}
	next.Quantities[productID] = qty
	return next
}

// QuantityFor returns the effective purchase quantity for a product:
// the explicit selection if one exists, otherwise 1.
func (s State) QuantityFor(productID int64) int {
	if qty, ok := s.Quantities[productID]; ok {
		return qty
	}
	return 1
}

// Product returns the catalog row for an id, if the snapshot holds one.
func (s State) Product(productID int64) (models.Product, bool) {
	for _, p := range s.Products {
		if p.ID == productID {
			return p, true
		}
	}
	return models.Product{}, false
}
