package memory

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/cart"
)

const collCarts = "carts"

type cartRepository struct {
	store *Store
	now   func() time.Time
}

// NewCartRepository 创建购物车仓储（内存文档存储）
func NewCartRepository(store *Store) cart.Repository {
	return &cartRepository{store: store, now: time.Now}
}

func copyItems(items []cart.Item) []cart.Item {
	return append([]cart.Item(nil), items...)
}

func (r *cartRepository) load(t *tx, userID string) []cart.Item {
	v, ok := t.get(collCarts, userID)
	if !ok {
		return nil
	}
	return copyItems(v.([]cart.Item))
}

func (r *cartRepository) save(t *tx, userID string, items []cart.Item) *cart.Cart {
	cart.SortItems(items)
	if len(items) == 0 {
		t.delete(collCarts, userID)
	} else {
		t.put(collCarts, userID, copyItems(items))
	}
	return &cart.Cart{UserID: userID, Items: items}
}

func (r *cartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID}
	err := r.store.do(ctx, func(t *tx) error {
		c.Items = r.load(t, userID)
		cart.SortItems(c.Items)
		return nil
	})
	return c, err
}

func (r *cartRepository) Add(ctx context.Context, userID string, item cart.Item) (*cart.Cart, error) {
	if item.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	var out *cart.Cart
	err := r.store.do(ctx, func(t *tx) error {
		items := r.load(t, userID)
		for i := range items {
			if items[i].BookID == item.BookID {
				items[i] = cart.Add(&items[i], item)
				out = r.save(t, userID, items)
				return nil
			}
		}
		if item.AddedAt == 0 {
			item.AddedAt = r.now().UnixNano()
		}
		out = r.save(t, userID, append(items, item))
		return nil
	})
	return out, err
}

func (r *cartRepository) SetQuantity(ctx context.Context, userID, bookID string, quantity int) (*cart.Cart, error) {
	if quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}
	var out *cart.Cart
	err := r.store.do(ctx, func(t *tx) error {
		items := r.load(t, userID)
		for i := range items {
			if items[i].BookID != bookID {
				continue
			}
			if quantity == 0 {
				items = append(items[:i], items[i+1:]...)
			} else {
				items[i].Quantity = quantity
			}
			out = r.save(t, userID, items)
			return nil
		}
		return cart.ErrItemNotInCart
	})
	return out, err
}

func (r *cartRepository) Remove(ctx context.Context, userID, bookID string) (*cart.Cart, error) {
	return r.SetQuantity(ctx, userID, bookID, 0)
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	return r.store.do(ctx, func(t *tx) error {
		t.delete(collCarts, userID)
		return nil
	})
}

func (r *cartRepository) Merge(ctx context.Context, userID string, guest []cart.Item) (*cart.Cart, error) {
	now := r.now().UnixNano()
	var out *cart.Cart
	err := r.store.do(ctx, func(t *tx) error {
		incoming := copyItems(guest)
		for i := range incoming {
			if incoming[i].AddedAt == 0 {
				incoming[i].AddedAt = now + int64(i)
			}
		}
		out = r.save(t, userID, cart.Merge(r.load(t, userID), incoming))
		return nil
	})
	return out, err
}
