// Package cart 购物车用例
package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
)

// UseCase 购物车用例
// 加入购物车时按图书当前信息生成条目，价格等字段以下单时的快照为准
type UseCase struct {
	cartRepo cart.Repository
	bookRepo book.Repository
	pricing  order.Pricing
}

// NewUseCase 创建购物车用例
func NewUseCase(cartRepo cart.Repository, bookRepo book.Repository, pricing order.Pricing) *UseCase {
	return &UseCase{cartRepo: cartRepo, bookRepo: bookRepo, pricing: pricing}
}

// View 购物车及报价
type View struct {
	Items []cart.Item   `json:"items"`
	Quote *order.Quote `json:"quote,omitempty"`
}

// Get 查看购物车
func (uc *UseCase) Get(ctx context.Context, userID string) (*View, error) {
	c, err := uc.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

// Add 加入购物车
func (uc *UseCase) Add(ctx context.Context, userID, bookID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	c, err := uc.cartRepo.Add(ctx, userID, uc.itemOf(b, quantity))
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

// SetQuantity 修改数量，0表示移除
func (uc *UseCase) SetQuantity(ctx context.Context, userID, bookID string, quantity int) (*View, error) {
	if quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}
	c, err := uc.cartRepo.SetQuantity(ctx, userID, bookID, quantity)
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

// Remove 移除条目
func (uc *UseCase) Remove(ctx context.Context, userID, bookID string) (*View, error) {
	c, err := uc.cartRepo.Remove(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

// Clear 清空购物车
func (uc *UseCase) Clear(ctx context.Context, userID string) error {
	return uc.cartRepo.Clear(ctx, userID)
}

// GuestItem 访客购物车条目
type GuestItem struct {
	BookID   string
	Quantity int
}

// Merge 登录后合并访客购物车，已下架的图书跳过
func (uc *UseCase) Merge(ctx context.Context, userID string, guest []GuestItem) (*View, error) {
	items := make([]cart.Item, 0, len(guest))
	for _, g := range guest {
		if g.Quantity <= 0 {
			continue
		}
		b, err := uc.bookRepo.FindByID(ctx, g.BookID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		items = append(items, uc.itemOf(b, g.Quantity))
	}
	c, err := uc.cartRepo.Merge(ctx, userID, items)
	if err != nil {
		return nil, err
	}
	return uc.view(c), nil
}

// Quote 当前购物车的报价
func (uc *UseCase) Quote(ctx context.Context, userID string) (*order.Quote, error) {
	c, err := uc.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrCartEmpty
	}
	q := uc.pricing.Quote(orderItems(c.Items))
	return &q, nil
}

func (uc *UseCase) itemOf(b *book.Book, quantity int) cart.Item {
	return cart.Item{
		BookID:   b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Price:    b.Price,
		ImageURL: b.ImageURL,
		Quantity: quantity,
	}
}

func (uc *UseCase) view(c *cart.Cart) *View {
	v := &View{Items: c.Items}
	if v.Items == nil {
		v.Items = []cart.Item{}
	}
	if !c.IsEmpty() {
		q := uc.pricing.Quote(orderItems(c.Items))
		v.Quote = &q
	}
	return v
}

func orderItems(items []cart.Item) []order.Item {
	out := make([]order.Item, len(items))
	for i, it := range items {
		out[i] = order.Item{BookID: it.BookID, Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, book.ErrBookNotFound)
}
