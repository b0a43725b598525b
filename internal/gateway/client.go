// Package gateway talks to the back-office REST backend that owns sale
// persistence.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"resty.dev/v3"

	"quincaillerie/internal/sales"
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewHTTPClient builds the resty client shared by the sales gateway and the
// catalog lookup. Timeouts live here; the service layer has none of its own.
func NewHTTPClient(cfg Config) *resty.Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}
	return c
}

// apiError is the body the backend sends with non-2xx responses. message is
// either a string or a list of validation messages.
type apiError struct {
	Message json.RawMessage `json:"message"`
}

func (e *apiError) text() string {
	if e == nil || len(e.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(e.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(e.Message)
}

// Client implements sales.Storage against the REST backend.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient wraps an HTTP client built with NewHTTPClient.
func NewClient(httpClient *resty.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, logger: logger}
}

var _ sales.Storage = (*Client)(nil)

// createSaleRequest is the POST /sales body. ID, version and updatedAt are
// the backend's to assign.
type createSaleRequest struct {
	Items         []sales.SaleItem  `json:"items"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	SaleDate      time.Time         `json:"saleDate"`
	PaymentDate   *time.Time        `json:"paymentDate"`
	PaymentType   sales.PaymentType `json:"paymentType"`
	Status        sales.Status      `json:"status"`
}

// Create posts a new sale; the backend assigns its ID.
func (c *Client) Create(ctx context.Context, sale *sales.Sale) (*sales.Sale, error) {
	body := createSaleRequest{
		Items:         sale.Items,
		TotalAmount:   sale.TotalAmount,
		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		SaleDate:      sale.SaleDate,
		PaymentDate:   sale.PaymentDate,
		PaymentType:   sale.PaymentType,
		Status:        sale.Status,
	}

	var out sales.Sale
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/sales")
	if err := c.check("create", res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches an existing sale.
func (c *Client) Update(ctx context.Context, id string, patch sales.SalePatch) (*sales.Sale, error) {
	if id == "" {
		return nil, sales.ErrEmptyID
	}
	var out sales.Sale
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(patch).
		SetResult(&out).
		SetError(&apiError{}).
		Patch("/sales/{id}")
	if err := c.check("update", res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Read fetches one sale by ID.
func (c *Client) Read(ctx context.Context, id string) (*sales.Sale, error) {
	var out sales.Sale
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/sales/{id}")
	if err := c.check("get", res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAll lists every sale known to the backend.
func (c *Client) GetAll(ctx context.Context) ([]*sales.Sale, error) {
	var out []*sales.Sale
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/sales")
	if err := c.check("list", res, err); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(s *sales.Sale) bool { return s == nil }), nil
}

// check turns a transport failure or a non-2xx response into a
// *sales.GatewayError carrying the backend's own message.
func (c *Client) check(op string, res *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("backend request failed", zap.String("op", op), zap.Error(err))
		return &sales.GatewayError{Op: op, Message: err.Error(), Err: err}
	}
	if !res.IsError() {
		return nil
	}

	gwErr := &sales.GatewayError{Op: op, StatusCode: res.StatusCode()}
	if apiErr, ok := res.Error().(*apiError); ok {
		gwErr.Message = apiErr.text()
	}
	if gwErr.Message == "" {
		gwErr.Message = http.StatusText(res.StatusCode())
	}
	switch res.StatusCode() {
	case http.StatusNotFound:
		gwErr.Err = sales.ErrNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		gwErr.Err = sales.ErrVersionConflict
	}

	c.logger.Warn("backend returned an error",
		zap.String("op", op),
		zap.Int("status", res.StatusCode()),
		zap.String("message", gwErr.Message),
	)
	return gwErr
}
