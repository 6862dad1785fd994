package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	store := memory.NewStore(3)
	books := memory.NewBookRepository(store)
	now := time.Now()
	for _, b := range []*book.Book{
		{ID: "b1", ISBN: "1", Title: "三体", Author: "刘慈欣", Price: 50000, Stock: 5, CreatedAt: now, UpdatedAt: now},
		{ID: "b2", ISBN: "2", Title: "活着", Author: "余华", Price: 30000, Stock: 5, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, books.Create(context.Background(), b))
	}
	return NewUseCase(memory.NewCartRepository(store), books, order.DefaultPricing())
}

func TestCart_AddSetRemove(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	v, err := uc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.Quote)

	v, err = uc.Add(ctx, "u1", "b1", 1)
	require.NoError(t, err)
	v, err = uc.Add(ctx, "u1", "b1", 1)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 2, v.Items[0].Quantity)
	assert.Equal(t, "三体", v.Items[0].Title)
	assert.Equal(t, int64(100000), v.Quote.Subtotal)
	assert.Equal(t, int64(0), v.Quote.CourierCharge)

	v, err = uc.Add(ctx, "u1", "b2", 1)
	require.NoError(t, err)
	assert.Equal(t, "b2", v.Items[1].BookID)

	v, err = uc.SetQuantity(ctx, "u1", "b1", 0)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(30000+18000+1000), v.Quote.Total)

	_, err = uc.Remove(ctx, "u1", "b1")
	assert.ErrorIs(t, err, cart.ErrItemNotInCart)

	_, err = uc.Add(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = uc.Add(ctx, "u1", "b1", 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	require.NoError(t, uc.Clear(ctx, "u1"))
	_, err = uc.Quote(ctx, "u1")
	assert.ErrorIs(t, err, cart.ErrCartEmpty)
}

func TestCart_Merge(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Add(ctx, "u1", "b1", 1)
	require.NoError(t, err)

	v, err := uc.Merge(ctx, "u1", []GuestItem{
		{BookID: "b1", Quantity: 2},
		{BookID: "b2", Quantity: 1},
		{BookID: "gone", Quantity: 1},
		{BookID: "b2", Quantity: 0},
	})
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "b1", v.Items[0].BookID)
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Equal(t, 1, v.Items[1].Quantity)

	q, err := uc.Quote(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(180000), q.Subtotal)
}
