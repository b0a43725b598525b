// Package catalog resolves products to their current name and price so a
// new line item can be pre-filled. Sale totals never depend on it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// ErrProductNotFound is returned when the backend has no such product.
var ErrProductNotFound = errors.New("product not found")

// Product is the subset of the backend product the sales flow needs.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"categoryId"`
	SupplierID  string          `json:"supplierId"`
}

// Client looks products up on the backend.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a catalog client on top of a configured resty client.
func NewClient(httpClient *resty.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, logger: logger}
}

// Resolve fetches a product by ID.
func (c *Client) Resolve(ctx context.Context, productID string) (*Product, error) {
	if productID == "" {
		return nil, ErrProductNotFound
	}

	var p Product
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", productID).
		SetResult(&p).
		Get("/products/{id}")
	if err != nil {
		c.logger.Error("error making request to product API", zap.String("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("error making request to product API: %w", err)
	}

	switch {
	case res.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	case res.IsError():
		return nil, fmt.Errorf("product API returned unexpected status: %d", res.StatusCode())
	}
	return &p, nil
}
