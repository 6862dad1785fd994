// Package cart 用户购物车
// 购物车属于客户端状态，服务端只做持久化；下单时把它作为有序快照使用。
package cart

import (
	"context"
	"sort"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

var (
	ErrCartEmpty       = apperrors.ErrCartEmpty
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrItemNotInCart   = apperrors.New(apperrors.ErrCodeNotFound, "购物车中没有该图书")
)

// Item 购物车条目
type Item struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
	Quantity int    `json:"quantity"`
	// AddedAt 首次加入时间（UnixNano），用于保持加入顺序
	AddedAt int64 `json:"added_at"`
}

// Cart 购物车
type Cart struct {
	UserID string
	Items  []Item
}

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal 商品小计
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// SortItems 按加入顺序排序
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AddedAt != items[j].AddedAt {
			return items[i].AddedAt < items[j].AddedAt
		}
		return items[i].BookID < items[j].BookID
	})
}

// Add 把incoming加到existing上（existing可为nil）
// 已有条目累加数量并用新的图书信息覆盖，保留首次加入时间
func Add(existing *Item, incoming Item) Item {
	if existing == nil {
		return incoming
	}
	merged := incoming
	merged.Quantity = existing.Quantity + incoming.Quantity
	merged.AddedAt = existing.AddedAt
	return merged
}

// Merge 合并访客购物车：同一图书数量相加
func Merge(existing, guest []Item) []Item {
	index := make(map[string]int, len(existing))
	out := make([]Item, 0, len(existing)+len(guest))
	for _, it := range existing {
		index[it.BookID] = len(out)
		out = append(out, it)
	}
	for _, it := range guest {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.BookID]; ok {
			out[i] = Add(&out[i], it)
			continue
		}
		index[it.BookID] = len(out)
		out = append(out, it)
	}
	SortItems(out)
	return out
}

// Repository 购物车仓储
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	// Add 加入购物车，已有条目累加数量
	Add(ctx context.Context, userID string, item Item) (*Cart, error)
	// SetQuantity 设置数量，0表示移除
	SetQuantity(ctx context.Context, userID, bookID string, quantity int) (*Cart, error)
	Remove(ctx context.Context, userID, bookID string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
	// Merge 合并访客购物车
	Merge(ctx context.Context, userID string, items []Item) (*Cart, error)
}
