package shop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inventory-demo/customer-shop/internal/api"
	"github.com/inventory-demo/customer-shop/internal/apitest"
	"github.com/inventory-demo/customer-shop/internal/models"
	"github.com/inventory-demo/customer-shop/internal/shop"
	"github.com/inventory-demo/customer-shop/pkg/logger"
)

func newTestController(t *testing.T) (*shop.Controller, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	log := logger.New("error")
	client := api.New(srv.URL(), 5*time.Second, log)
	return shop.NewController(client, log), srv
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name         string
		customerName string
		wantErr      error
		wantLoggedIn bool
		wantFetches  int
	}{
		{
			name:         "valid name",
			customerName: "Asha",
			wantErr:      nil,
			wantLoggedIn: true,
			wantFetches:  1,
		},
		{
			name:         "name with surrounding whitespace",
			customerName: "  Asha  ",
			wantErr:      nil,
			wantLoggedIn: true,
			wantFetches:  1,
		},
		{
			name:         "empty name",
			customerName: "",
			wantErr:      shop.ErrEmptyName,
			wantLoggedIn: false,
			wantFetches:  0,
		},
		{
			name:         "whitespace-only name",
			customerName: "   ",
			wantErr:      shop.ErrEmptyName,
			wantLoggedIn: false,
			wantFetches:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, srv := newTestController(t)

			err := ctrl.Login(context.Background(), tt.customerName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Login() unexpected error = %v", err)
			}

			state := ctrl.State()
			if state.LoggedIn != tt.wantLoggedIn {
				t.Errorf("LoggedIn = %v, want %v", state.LoggedIn, tt.wantLoggedIn)
			}
			if srv.ProductCalls() != tt.wantFetches {
				t.Errorf("catalog fetches = %d, want %d", srv.ProductCalls(), tt.wantFetches)
			}
			if tt.wantLoggedIn && state.CustomerName != "Asha" {
				t.Errorf("CustomerName = %q, want %q", state.CustomerName, "Asha")
			}
			if tt.wantLoggedIn && len(state.Products) == 0 {
				t.Error("expected catalog to be populated after login")
			}
		})
	}
}

func TestLogin_IsOneWay(t *testing.T) {
	ctrl, srv := newTestController(t)

	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	if err := ctrl.Login(context.Background(), "Ravi"); !errors.Is(err, shop.ErrAlreadyLoggedIn) {
		t.Errorf("second Login() error = %v, want %v", err, shop.ErrAlreadyLoggedIn)
	}

	// The catalog must not be refetched by the rejected login.
	if srv.ProductCalls() != 1 {
		t.Errorf("catalog fetches = %d, want 1", srv.ProductCalls())
	}
	if got := ctrl.State().CustomerName; got != "Asha" {
		t.Errorf("CustomerName = %q, want %q", got, "Asha")
	}
}

func TestLogin_CatalogFailure(t *testing.T) {
	ctrl, srv := newTestController(t)
	srv.FailProducts(true)

	err := ctrl.Login(context.Background(), "Asha")
	if !errors.Is(err, shop.ErrCatalogLoad) {
		t.Fatalf("Login() error = %v, want %v", err, shop.ErrCatalogLoad)
	}

	// The login itself sticks; only the snapshot is missing. No retry.
	state := ctrl.State()
	if !state.LoggedIn {
		t.Error("expected session to remain logged in after catalog failure")
	}
	if len(state.Products) != 0 {
		t.Errorf("expected empty catalog, got %d products", len(state.Products))
	}
	if srv.ProductCalls() != 1 {
		t.Errorf("catalog fetches = %d, want 1 (no automatic retry)", srv.ProductCalls())
	}
}

func TestSetQuantity(t *testing.T) {
	ctrl, _ := newTestController(t)

	if err := ctrl.SetQuantity(1, 3); !errors.Is(err, shop.ErrNotLoggedIn) {
		t.Errorf("SetQuantity() before login error = %v, want %v", err, shop.ErrNotLoggedIn)
	}

	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	if err := ctrl.SetQuantity(1, 0); !errors.Is(err, shop.ErrInvalidQuantity) {
		t.Errorf("SetQuantity(1, 0) error = %v, want %v", err, shop.ErrInvalidQuantity)
	}
	if err := ctrl.SetQuantity(1, -2); !errors.Is(err, shop.ErrInvalidQuantity) {
		t.Errorf("SetQuantity(1, -2) error = %v, want %v", err, shop.ErrInvalidQuantity)
	}

	if err := ctrl.SetQuantity(1, 3); err != nil {
		t.Fatalf("SetQuantity(1, 3) unexpected error = %v", err)
	}
	if got := ctrl.State().QuantityFor(1); got != 3 {
		t.Errorf("QuantityFor(1) = %d, want 3", got)
	}
	if got := ctrl.State().QuantityFor(2); got != 1 {
		t.Errorf("QuantityFor(2) = %d, want 1 (selections are independent)", got)
	}
}

func TestBuy_DefaultQuantity(t *testing.T) {
	ctrl, srv := newTestController(t)
	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	if err := ctrl.Buy(context.Background(), 1); err != nil {
		t.Fatalf("Buy() unexpected error = %v", err)
	}

	orders := srv.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Quantity != 1 {
		t.Errorf("order quantity = %d, want 1 (default)", orders[0].Quantity)
	}
	if orders[0].ProductID != 1 {
		t.Errorf("order product = %d, want 1", orders[0].ProductID)
	}
	if orders[0].CustomerName != "Asha" {
		t.Errorf("order customer = %q, want %q", orders[0].CustomerName, "Asha")
	}
}

func TestBuy_ExplicitQuantity(t *testing.T) {
	ctrl, srv := newTestController(t)
	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	// Selection for product 2 must not affect the order for product 1.
	if err := ctrl.SetQuantity(1, 3); err != nil {
		t.Fatalf("SetQuantity() unexpected error = %v", err)
	}
	if err := ctrl.SetQuantity(2, 7); err != nil {
		t.Fatalf("SetQuantity() unexpected error = %v", err)
	}

	if err := ctrl.Buy(context.Background(), 1); err != nil {
		t.Fatalf("Buy() unexpected error = %v", err)
	}

	orders := srv.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Quantity != 3 {
		t.Errorf("order quantity = %d, want 3", orders[0].Quantity)
	}
}

func TestBuy_SuccessResetsToFreshSession(t *testing.T) {
	ctrl, _ := newTestController(t)
	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}
	if err := ctrl.SetQuantity(1, 3); err != nil {
		t.Fatalf("SetQuantity() unexpected error = %v", err)
	}

	if err := ctrl.Buy(context.Background(), 1); err != nil {
		t.Fatalf("Buy() unexpected error = %v", err)
	}

	state := ctrl.State()
	if state.LoggedIn {
		t.Error("expected session to be logged out after successful order")
	}
	if state.CustomerName != "" {
		t.Errorf("expected customer name to be cleared, got %q", state.CustomerName)
	}
	if len(state.Products) != 0 {
		t.Errorf("expected empty catalog, got %d products", len(state.Products))
	}
	if len(state.Quantities) != 0 {
		t.Errorf("expected empty selections, got %d", len(state.Quantities))
	}
}

func TestBuy_FailureLeavesStateUntouched(t *testing.T) {
	ctrl, srv := newTestController(t)
	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}
	if err := ctrl.SetQuantity(1, 3); err != nil {
		t.Fatalf("SetQuantity() unexpected error = %v", err)
	}

	before := ctrl.State()
	srv.FailOrders(true)

	err := ctrl.Buy(context.Background(), 1)
	if !errors.Is(err, shop.ErrOrderSubmit) {
		t.Fatalf("Buy() error = %v, want %v", err, shop.ErrOrderSubmit)
	}

	after := ctrl.State()
	if !after.LoggedIn || after.CustomerName != before.CustomerName {
		t.Error("session changed after failed order")
	}
	if len(after.Products) != len(before.Products) {
		t.Error("catalog changed after failed order")
	}
	if after.QuantityFor(1) != 3 {
		t.Errorf("QuantityFor(1) = %d, want 3 after failed order", after.QuantityFor(1))
	}

	// Manual retry must go through once the backend recovers.
	srv.FailOrders(false)
	if err := ctrl.Buy(context.Background(), 1); err != nil {
		t.Fatalf("retry Buy() unexpected error = %v", err)
	}
}

func TestBuy_NotLoggedIn(t *testing.T) {
	ctrl, srv := newTestController(t)

	if err := ctrl.Buy(context.Background(), 1); !errors.Is(err, shop.ErrNotLoggedIn) {
		t.Errorf("Buy() error = %v, want %v", err, shop.ErrNotLoggedIn)
	}
	if len(srv.Orders()) != 0 {
		t.Error("expected no order to be issued before login")
	}
}

func TestBuy_EncodesCustomerName(t *testing.T) {
	ctrl, srv := newTestController(t)

	// Names with URL metacharacters must arrive intact.
	name := "A&B =?Müller"
	if err := ctrl.Login(context.Background(), name); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}
	if err := ctrl.Buy(context.Background(), 2); err != nil {
		t.Fatalf("Buy() unexpected error = %v", err)
	}

	orders := srv.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].CustomerName != name {
		t.Errorf("customer name = %q, want %q", orders[0].CustomerName, name)
	}
}

// blockingAPI serves a fixed catalog and parks PlaceOrder until released,
// to exercise the in-flight order guard.
type blockingAPI struct {
	release chan struct{}
	placed  chan struct{}
}

func (b *blockingAPI) ListProducts(ctx context.Context) ([]models.Product, error) {
	return []models.Product{
		{ID: 1, ProductName: "Pen", Price: 10, Quantity: 50},
		{ID: 2, ProductName: "Notebook", Price: 45.5, Quantity: 20},
	}, nil
}

func (b *blockingAPI) PlaceOrder(ctx context.Context, order models.OrderRequest) (*models.OrderReceipt, error) {
	b.placed <- struct{}{}
	<-b.release
	return &models.OrderReceipt{ID: 1, ProductID: order.ProductID, Quantity: order.Quantity}, nil
}

func TestBuy_RejectsDuplicateInFlight(t *testing.T) {
	fake := &blockingAPI{
		release: make(chan struct{}),
		placed:  make(chan struct{}),
	}
	ctrl := shop.NewController(fake, logger.New("error"))

	if err := ctrl.Login(context.Background(), "Asha"); err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Buy(context.Background(), 1)
	}()
	<-fake.placed // first order is now in flight

	if err := ctrl.Buy(context.Background(), 1); !errors.Is(err, shop.ErrOrderPending) {
		t.Errorf("duplicate Buy() error = %v, want %v", err, shop.ErrOrderPending)
	}

	close(fake.release)
	if err := <-done; err != nil {
		t.Errorf("first Buy() unexpected error = %v", err)
	}
}
