package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/site"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:u-1", sessionKey("u-1"))
	assert.Equal(t, "blacklist:abc", blacklistKey("abc"))
	assert.Equal(t, "cart:u-1", cartKey("u-1"))
}

func TestDecodeItems(t *testing.T) {
	first, err := encodeItem(cart.Item{BookID: "b2", Quantity: 1, AddedAt: 1})
	require.NoError(t, err)
	second, err := encodeItem(cart.Item{BookID: "b1", Quantity: 3, AddedAt: 2})
	require.NoError(t, err)
	zero, err := encodeItem(cart.Item{BookID: "b3", Quantity: 0, AddedAt: 3})
	require.NoError(t, err)

	items := decodeItems(map[string]string{
		"b1": second,
		"b2": first,
		"b3": zero,
		"b4": "{broken",
	})
	require.Len(t, items, 2)
	assert.Equal(t, "b2", items[0].BookID)
	assert.Equal(t, "b1", items[1].BookID)
	assert.Equal(t, 3, items[1].Quantity)
}

func TestDecodeMembers(t *testing.T) {
	members := decodeMembers(map[string]string{
		"m2": `{"id":"m2","name":"乙","role":"编辑","position":2}`,
		"m1": `{"id":"m1","name":"甲","role":"主编","position":1}`,
		"m3": `not json`,
	})
	require.Len(t, members, 2)
	assert.Equal(t, []site.TeamMember{
		{ID: "m1", Name: "甲", Role: "主编", Position: 1},
		{ID: "m2", Name: "乙", Role: "编辑", Position: 2},
	}, members)
}
