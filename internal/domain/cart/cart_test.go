package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	first := Item{BookID: "a", Quantity: 1, Price: 100, AddedAt: 1}
	assert.Equal(t, first, Add(nil, first))

	merged := Add(&first, Item{BookID: "a", Quantity: 2, Price: 120, AddedAt: 9})
	assert.Equal(t, 3, merged.Quantity)
	assert.Equal(t, int64(120), merged.Price)
	assert.Equal(t, int64(1), merged.AddedAt)
}

func TestMerge(t *testing.T) {
	existing := []Item{
		{BookID: "a", Quantity: 1, AddedAt: 1},
		{BookID: "b", Quantity: 2, AddedAt: 2},
	}
	guest := []Item{
		{BookID: "b", Quantity: 3, AddedAt: 5},
		{BookID: "c", Quantity: 1, AddedAt: 6},
		{BookID: "d", Quantity: 0, AddedAt: 7},
	}

	got := Merge(existing, guest)

	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].BookID)
	assert.Equal(t, "b", got[1].BookID)
	assert.Equal(t, 5, got[1].Quantity)
	assert.Equal(t, "c", got[2].BookID)
}

func TestCart_Subtotal(t *testing.T) {
	c := &Cart{Items: []Item{{Price: 100, Quantity: 2}, {Price: 50, Quantity: 1}}}
	assert.Equal(t, int64(250), c.Subtotal())
	assert.False(t, c.IsEmpty())
	assert.True(t, (&Cart{}).IsEmpty())
}
