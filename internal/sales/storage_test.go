package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_CreateAssignsID(t *testing.T) {
	l := NewLocalStorage()
	in := &Sale{CustomerName: "Jean", Status: StatusPending}

	created, err := l.Create(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Empty(t, in.ID, "input must not be modified")
}

func TestLocalStorage_ReadReturnsCopy(t *testing.T) {
	l := NewLocalStorage()
	created, err := l.Create(context.Background(), &Sale{Items: []SaleItem{{ProductID: "p1", Quantity: 1}}})
	require.NoError(t, err)

	got, err := l.Read(context.Background(), created.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	got.Status = StatusPaid

	again, err := l.Read(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, Status(""), again.Status)
}

func TestLocalStorage_Update(t *testing.T) {
	l := NewLocalStorage()
	created, err := l.Create(context.Background(), &Sale{Status: StatusPending})
	require.NoError(t, err)

	paid := StatusPaid
	updated, err := l.Update(context.Background(), created.ID, SalePatch{Status: &paid, Version: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)
	assert.Equal(t, 2, updated.Version)

	cancelled := StatusCancelled
	_, err = l.Update(context.Background(), created.ID, SalePatch{Status: &cancelled, Version: 1})
	assert.ErrorIs(t, err, ErrVersionConflict)

	_, err = l.Update(context.Background(), "missing", SalePatch{Status: &cancelled})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Update(context.Background(), "", SalePatch{})
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestLocalStorage_ReadNotFound(t *testing.T) {
	_, err := NewLocalStorage().Read(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalStorage().GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
