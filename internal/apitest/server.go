// Package apitest provides an in-process stand-in for the customer API,
// used by client tests. It mirrors the deployed service's surface: the
// two /api/customer endpoints, JSON bodies, and its CORS policy.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inventory-demo/customer-shop/internal/models"
)

// ReceivedOrder is one order as the fake backend saw it, raw query
// included so tests can assert on parameter encoding.
type ReceivedOrder struct {
	ProductID    int64
	Quantity     int
	CustomerName string
	RawQuery     string
}

// Server is a fake customer API with toggleable failure modes.
type Server struct {
	mu           sync.Mutex
	products     map[int64]models.Product
	orders       []ReceivedOrder
	productCalls int
	failProducts bool
	failOrders   bool
	nextOrderID  int64

	httpSrv *httptest.Server
}

// NewServer starts a fake customer API seeded with a small catalog.
// Callers own the server and must Close it.
func NewServer() *Server {
	s := &Server{
		products: map[int64]models.Product{
			1: {ID: 1, ProductName: "Pen", Price: 10, Quantity: 50},
			2: {ID: 2, ProductName: "Notebook", Price: 45.5, Quantity: 20},
			3: {ID: 3, ProductName: "Stapler", Price: 120, Quantity: 7},
		},
		nextOrderID: 1,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/api/customer/products", s.listProducts)
	r.Post("/api/customer/orders", s.placeOrder)

	s.httpSrv = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake API.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the fake API down.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// SetProducts replaces the seeded catalog.
func (s *Server) SetProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]models.Product, len(products))
	for _, p := range products {
		s.products[p.ID] = p
	}
}

// FailProducts makes the catalog endpoint return 500 until reset.
func (s *Server) FailProducts(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failProducts = fail
}

// FailOrders makes the order endpoint return 500 until reset.
func (s *Server) FailOrders(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOrders = fail
}

// ProductCalls reports how many times the catalog endpoint was hit.
func (s *Server) ProductCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productCalls
}

// Orders returns all orders received so far.
func (s *Server) Orders() []ReceivedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReceivedOrder, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.productCalls++
	fail := s.failProducts
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.Unlock()

	if fail {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	productID, err := strconv.ParseInt(q.Get("productId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	quantity, err := strconv.Atoi(q.Get("quantity"))
	if err != nil || quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid quantity")
		return
	}
	customerName := q.Get("customerName")
	if customerName == "" {
		writeError(w, http.StatusBadRequest, "Customer name is required")
		return
	}

	s.mu.Lock()
	if s.failOrders {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	product, ok := s.products[productID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	orderID := s.nextOrderID
	s.nextOrderID++
	s.orders = append(s.orders, ReceivedOrder{
		ProductID:    productID,
		Quantity:     quantity,
		CustomerName: customerName,
		RawQuery:     r.URL.RawQuery,
	})
	s.mu.Unlock()

	receipt := models.OrderReceipt{
		ID:           orderID,
		ProductID:    productID,
		ProductName:  product.ProductName,
		Quantity:     quantity,
		CustomerName: customerName,
		OrderTime:    time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, receipt)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes an error response in JSON format
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
