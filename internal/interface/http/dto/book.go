package dto

import (
	appbook "github.com/xiebiao/bookworld/internal/application/book"
	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/pkg/money"
)

// BookRequest 上架/修改图书请求
// 金额字段为最小货币单位，格式校验交给领域层（ozzo-validation）
type BookRequest struct {
	ISBN          string `json:"isbn" example:"9780134190440"`
	Title         string `json:"title" binding:"required,max=255" example:"The Go Programming Language"`
	Author        string `json:"author" binding:"required,max=255" example:"Alan Donovan"`
	Publisher     string `json:"publisher" binding:"max=255" example:"Addison-Wesley"`
	Description   string `json:"description" binding:"max=5000"`
	Price         int64  `json:"price" binding:"min=0" example:"59900"` // 599.00
	Stock         int    `json:"stock" binding:"min=0" example:"20"`
	Category      string `json:"category" binding:"required,max=100" example:"programming"`
	ImageURL      string `json:"image_url" binding:"omitempty,url,max=500" example:"https://cdn.example.com/bookshop/cover.jpg"`
	Language      string `json:"language" binding:"max=50" example:"English"`
	Pages         int    `json:"pages" binding:"min=0" example:"380"`
	PublishedDate string `json:"published_date" example:"2015-10-26"`
	Featured      bool   `json:"featured"`
}

// ToInput 转为领域录入信息
func (r BookRequest) ToInput() book.Input {
	return book.Input{
		ISBN:          r.ISBN,
		Title:         r.Title,
		Author:        r.Author,
		Publisher:     r.Publisher,
		Description:   r.Description,
		Price:         r.Price,
		Stock:         r.Stock,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		Language:      r.Language,
		Pages:         r.Pages,
		PublishedDate: r.PublishedDate,
		Featured:      r.Featured,
	}
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Featured *bool  `form:"featured"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=created_at:desc price:asc price:desc title:asc" example:"created_at:desc"`
}

// ToRequest 转为应用层请求
func (q ListBooksQuery) ToRequest() appbook.ListBooksRequest {
	return appbook.ListBooksRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
		Category: q.Category,
		Featured: q.Featured,
		Keyword:  q.Keyword,
		SortBy:   q.SortBy,
	}
}

// BookResponse 图书详情，附带格式化后的价格方便前端显示
type BookResponse struct {
	*appbook.BookDetail
	PriceDisplay string `json:"price_display" example:"599.00"`
}

// NewBookResponse 构建图书详情响应
func NewBookResponse(b *appbook.BookDetail) *BookResponse {
	return &BookResponse{BookDetail: b, PriceDisplay: money.Format(b.Price)}
}

// BookListItem 图书列表项
type BookListItem struct {
	appbook.BookListItem
	PriceDisplay string `json:"price_display" example:"599.00"`
}

// NewBookList 构建列表项
func NewBookList(items []appbook.BookListItem) []BookListItem {
	out := make([]BookListItem, 0, len(items))
	for _, it := range items {
		out = append(out, BookListItem{BookListItem: it, PriceDisplay: money.Format(it.Price)})
	}
	return out
}
