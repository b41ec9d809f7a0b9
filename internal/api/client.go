package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/inventory-demo/customer-shop/internal/models"
)

const (
	productsPath = "/api/customer/products"
	ordersPath   = "/api/customer/orders"
)

// Client talks to the customer API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a customer API client. The timeout bounds each request
// end to end, including body decode.
func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: newLoggingTransport(transport, log),
		},
	}
}

// ListProducts fetches the full catalog. The result replaces any previously
// held snapshot wholesale; there is no pagination or partial update.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+productsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}

	return products, nil
}

// PlaceOrder submits a purchase for one product/quantity pair. The customer
// API takes the order fields as request parameters on the POST; they are
// built with url.Values so arbitrary customer names survive the trip.
func (c *Client) PlaceOrder(ctx context.Context, order models.OrderRequest) (*models.OrderReceipt, error) {
	params := url.Values{}
	params.Set("productId", strconv.FormatInt(order.ProductID, 10))
	params.Set("quantity", strconv.Itoa(order.Quantity))
	params.Set("customerName", order.CustomerName)

	endpoint := c.baseURL + ordersPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("place order: unexpected status %d", resp.StatusCode)
	}

	var receipt models.OrderReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	return &receipt, nil
}
