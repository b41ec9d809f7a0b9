package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/inventory-demo/customer-shop/internal/models"
)

var (
	ErrEmptyName       = errors.New("customer name must not be empty")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCatalogLoad     = errors.New("failed to load products")
	ErrOrderSubmit     = errors.New("order failed")
	ErrOrderPending    = errors.New("an order for this product is already in flight")
)

// CustomerAPI is the slice of the customer API the controller needs.
type CustomerAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	PlaceOrder(ctx context.Context, order models.OrderRequest) (*models.OrderReceipt, error)
}

// Controller owns the application state and drives all transitions.
// State moves only through the pure transitions in state.go; the
// controller adds validation, the network calls, and the in-flight
// order guard around them.
type Controller struct {
	mu       sync.Mutex
	state    State
	inflight map[int64]bool

	api CustomerAPI
	log *slog.Logger
}

// NewController creates a controller in the initial logged-out state.
func NewController(api CustomerAPI, log *slog.Logger) *Controller {
	return &Controller{
		state:    NewState(),
		inflight: make(map[int64]bool),
		api:      api,
		log:      log,
	}
}

// State returns a snapshot of the current state. Transitions are
// copy-on-write, so the snapshot never changes under the caller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login performs the one-way LoggedOut -> LoggedIn transition and then
// loads the catalog, exactly once per transition. A catalog failure is
// reported but does not undo the login; the snapshot stays empty and
// there is no automatic retry.
func (c *Controller) Login(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	c.mu.Lock()
	if c.state.LoggedIn {
		c.mu.Unlock()
		return ErrAlreadyLoggedIn
	}
	c.state = c.state.WithLogin(name)
	c.mu.Unlock()

	c.log.Info("customer logged in", "customer", name)

	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.log.Error("catalog load failed", "error", err)
		return fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	c.mu.Lock()
	c.state = c.state.WithCatalog(products)
	c.mu.Unlock()

	c.log.Info("catalog loaded", "products", len(products))
	return nil
}

// SetQuantity records the requested purchase quantity for one product.
// Quantities below 1 are rejected; there is no upper clamp against
// stock, the backend stays the authority on availability.
func (c *Controller) SetQuantity(productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.LoggedIn {
		return ErrNotLoggedIn
	}
	c.state = c.state.WithQuantity(productID, qty)
	return nil
}

// Buy submits an order for one product using the effective quantity and
// the session's customer name. On success the whole application resets
// to the initial logged-out state so the next session starts from a
// fresh catalog. On failure nothing changes and the user may simply
// try again.
//
// A second Buy for the same product while one is in flight is rejected;
// different products may be in flight concurrently.
func (c *Controller) Buy(ctx context.Context, productID int64) error {
	c.mu.Lock()
	if !c.state.LoggedIn {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	if c.inflight[productID] {
		c.mu.Unlock()
		return ErrOrderPending
	}
	order := models.OrderRequest{
		ProductID:    productID,
		Quantity:     c.state.QuantityFor(productID),
		CustomerName: c.state.CustomerName,
	}
	c.inflight[productID] = true
	c.mu.Unlock()

	receipt, err := c.api.PlaceOrder(ctx, order)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, productID)

	if err != nil {
		c.log.Error("order submission failed",
			"product_id", productID,
			"quantity", order.Quantity,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrOrderSubmit, err)
	}

	c.log.Info("order placed",
		"order_id", receipt.ID,
		"product_id", productID,
		"quantity", order.Quantity,
		"customer", order.CustomerName,
	)

	// Back to a fresh session: logged out, empty catalog, no selections.
	c.state = NewState()
	c.inflight = make(map[int64]bool)
	return nil
}
