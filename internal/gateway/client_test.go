package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"quincaillerie/internal/sales"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := NewHTTPClient(Config{BaseURL: srv.URL + "/api/", Token: "secret", Timeout: 2 * time.Second})
	t.Cleanup(func() { httpClient.Close() })
	return NewClient(httpClient, zaptest.NewLogger(t))
}

func TestClient_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sales", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PENDING", body["status"])
		assert.Equal(t, "Jean Dupont", body["customerName"])
		assert.Contains(t, body, "paymentDate")
		assert.Nil(t, body["paymentDate"])
		// the backend assigns these
		assert.NotContains(t, body, "id")
		assert.NotContains(t, body, "updatedAt")
		assert.NotContains(t, body, "version")

		amount, err := decimal.NewFromString(fmt.Sprint(body["totalAmount"]))
		assert.NoError(t, err)
		assert.True(t, decimal.RequireFromString("72.97").Equal(amount))

		body["id"] = "42"
		writeJSON(w, http.StatusCreated, body)
	})

	created, err := client.Create(context.Background(), &sales.Sale{
		ID:           "ignored",
		CustomerName: "Jean Dupont",
		Status:       sales.StatusPending,
		PaymentType:  sales.PaymentCash,
		TotalAmount:  decimal.RequireFromString("72.97"),
		Version:      7,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, "Jean Dupont", created.CustomerName)
	assert.Equal(t, sales.StatusPending, created.Status)
}

func TestClient_Update(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/sales/42", r.URL.Path)

		var patch map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "PAID", patch["status"])
		assert.Equal(t, float64(3), patch["version"])
		assert.NotContains(t, patch, "customerName")

		writeJSON(w, http.StatusOK, map[string]any{"id": "42", "status": "PAID", "paymentType": "CARD", "version": 4})
	})

	paid := sales.StatusPaid
	updated, err := client.Update(context.Background(), "42", sales.SalePatch{Status: &paid, Version: 3})
	require.NoError(t, err)
	assert.Equal(t, sales.StatusPaid, updated.Status)
	assert.Equal(t, sales.PaymentCard, updated.PaymentType)
	assert.Equal(t, 4, updated.Version)
}

func TestClient_ReadNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Vente introuvable", "statusCode": 404})
	})

	_, err := client.Read(context.Background(), "missing")

	var gwErr *sales.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
	assert.Equal(t, "Vente introuvable", gwErr.Message)
	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestClient_ValidationMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"customerPhone too short", "items empty"}})
	})

	_, err := client.Create(context.Background(), &sales.Sale{})

	var gwErr *sales.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "customerPhone too short; items empty", gwErr.Message)
}

func TestClient_Conflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "stale version"})
	})

	_, err := client.Update(context.Background(), "1", sales.SalePatch{})
	assert.ErrorIs(t, err, sales.ErrVersionConflict)
}

func TestClient_GetAll(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sales", r.URL.Path)
		writeJSON(w, http.StatusOK, []any{
			map[string]any{"id": "1", "status": "PENDING", "paymentType": "CASH", "totalAmount": 72.97},
			nil,
			map[string]any{"id": "2", "status": "PAID", "paymentType": "CARD", "totalAmount": "10.5"},
		})
	})

	all, err := client.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, decimal.RequireFromString("72.97").Equal(all[0].TotalAmount))
	assert.Equal(t, sales.StatusPaid, all[1].Status)
}

func TestClient_TransportError(t *testing.T) {
	httpClient := NewHTTPClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	defer httpClient.Close()
	client := NewClient(httpClient, zaptest.NewLogger(t))

	_, err := client.Read(context.Background(), "1")

	var gwErr *sales.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Zero(t, gwErr.StatusCode)
	assert.NotEmpty(t, gwErr.Message)
}
