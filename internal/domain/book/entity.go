package book

import (
	"time"
)

// Book 图书实体（聚合根）
// 价格以最小货币单位（分）存储，库存始终 >= 0，
// 库存只在下单事务内扣减，或由管理员直接设置。
type Book struct {
	ID            string
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	Description   string
	Price         int64
	Stock         int
	Category      string
	ImageURL      string
	Language      string
	Pages         int
	PublishedDate string // YYYY-MM-DD，可为空
	Featured      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 由录入信息创建图书（ID由调用方生成）
func NewBook(id string, in Input, now time.Time) *Book {
	b := &Book{ID: id, CreatedAt: now}
	b.apply(in, now)
	return b
}

// Apply 用录入信息覆盖图书字段
// allowStock=false时保留原库存（非管理员不能直接改库存）
func (b *Book) Apply(in Input, allowStock bool, now time.Time) {
	stock := b.Stock
	b.apply(in, now)
	if !allowStock {
		b.Stock = stock
	}
}

func (b *Book) apply(in Input, now time.Time) {
	b.ISBN = in.ISBN
	b.Title = in.Title
	b.Author = in.Author
	b.Publisher = in.Publisher
	b.Description = in.Description
	b.Price = in.Price
	b.Stock = in.Stock
	b.Category = in.Category
	b.ImageURL = in.ImageURL
	b.Language = in.Language
	b.Pages = in.Pages
	b.PublishedDate = in.PublishedDate
	b.Featured = in.Featured
	b.UpdatedAt = now
}

// CanFulfil 库存是否足够
func (b *Book) CanFulfil(quantity int) bool {
	return quantity > 0 && b.Stock >= quantity
}

// DecrStock 扣减库存
func (b *Book) DecrStock(quantity int, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return InsufficientStock(b.ID, b.Stock)
	}
	b.Stock -= quantity
	b.UpdatedAt = now
	return nil
}

// IsLowStock 库存是否低于阈值
func (b *Book) IsLowStock(threshold int) bool {
	return b.Stock < threshold
}
