package sales

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func scenarioItems() []ItemInput {
	return []ItemInput{
		{ProductID: "p1", Quantity: 2, UnitPrice: price("29.99")},
		{ProductID: "p2", Quantity: 1, UnitPrice: price("12.99")},
	}
}

func TestComputeTotals_TwoLines(t *testing.T) {
	items, total, err := ComputeTotals(scenarioItems())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.True(t, price("59.98").Equal(items[0].TotalPrice), "got %s", items[0].TotalPrice)
	assert.True(t, price("12.99").Equal(items[1].TotalPrice), "got %s", items[1].TotalPrice)
	assert.True(t, price("72.97").Equal(total), "got %s", total)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestComputeTotals_SumMatchesLines(t *testing.T) {
	inputs := []ItemInput{
		{ProductID: "a", Quantity: 3, UnitPrice: price("0.10")},
		{ProductID: "b", Quantity: 7, UnitPrice: price("1.45")},
		{ProductID: "c", Quantity: 1, UnitPrice: price("0")},
		{ProductID: "d", Quantity: 12, UnitPrice: price("1500")},
	}

	items, total, err := ComputeTotals(inputs)
	require.NoError(t, err)

	want := decimal.Zero
	for i, in := range inputs {
		line := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		assert.True(t, line.Equal(items[i].TotalPrice), "line %d: got %s want %s", i, items[i].TotalPrice, line)
		want = want.Add(line)
	}
	assert.True(t, want.Equal(total), "got %s want %s", total, want)
	assert.True(t, price("18010.45").Equal(total), "got %s", total)
}

func TestComputeTotals_RoundsToMinorUnit(t *testing.T) {
	items, total, err := ComputeTotals([]ItemInput{{ProductID: "p", Quantity: 3, UnitPrice: price("0.333")}})
	require.NoError(t, err)
	assert.Equal(t, "1", items[0].TotalPrice.String())
	assert.Equal(t, "1", total.String())
}

func TestComputeTotals_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		items []ItemInput
		field string
	}{
		{name: "empty", items: nil, field: "items"},
		{name: "zero quantity", items: []ItemInput{{ProductID: "p", Quantity: 0, UnitPrice: price("1")}}, field: "items[0].quantity"},
		{name: "negative quantity", items: []ItemInput{{ProductID: "p", Quantity: -2, UnitPrice: price("1")}}, field: "items[0].quantity"},
		{name: "negative price", items: []ItemInput{
			{ProductID: "p", Quantity: 1, UnitPrice: price("1")},
			{ProductID: "q", Quantity: 1, UnitPrice: price("-0.01")},
		}, field: "items[1].unitPrice"},
		{name: "missing product", items: []ItemInput{{ProductID: " ", Quantity: 1, UnitPrice: price("1")}}, field: "items[0].productId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := ComputeTotals(tt.items)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Nil(t, items)
			assert.True(t, total.IsZero())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusPaid, StatusCancelled}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusPaid}:      true,
		{StatusPending, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, Status("approved").CanTransitionTo(StatusPaid))
}

func TestParseEnums(t *testing.T) {
	st, err := ParseStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, st)

	_, err = ParseStatus("approved")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	pt, err := ParsePaymentType("TRANSFER")
	require.NoError(t, err)
	assert.Equal(t, PaymentTransfer, pt)

	_, err = ParsePaymentType("Mobile Money")
	assert.ErrorIs(t, err, ErrInvalidPaymentType)

	var s Status
	assert.ErrorIs(t, s.UnmarshalText([]byte("rejected")), ErrInvalidStatus)
	assert.Equal(t, Status(""), s)

	var p PaymentType
	assert.ErrorIs(t, p.UnmarshalText([]byte("CHEQUE")), ErrInvalidPaymentType)
	require.NoError(t, p.UnmarshalText([]byte("CARD")))
	assert.Equal(t, PaymentCard, p)
}
