package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/shared"
)

// ListBooksUseCase 图书列表查询用例
// 列表不返回description，详情接口再返回完整信息
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int
	PageSize int
	Category string
	Featured *bool
	Keyword  string // 匹配书名
	SortBy   string // created_at:desc | price:asc | price:desc | title:asc
}

// BookListItem 列表项DTO(不含description)
type BookListItem struct {
	ID       string `json:"id"`
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Price    int64  `json:"price"` // 最小货币单位
	Stock    int    `json:"stock"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
	Featured bool   `json:"featured"`
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	page := shared.Page{Page: req.Page, PageSize: req.PageSize}.Normalize()
	params := book.ListParams{
		Page:     page,
		Category: req.Category,
		Featured: req.Featured,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	}

	books, total, err := uc.bookService.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]BookListItem, 0, len(books))
	for _, b := range books {
		items = append(items, BookListItem{
			ID:       b.ID,
			ISBN:     b.ISBN,
			Title:    b.Title,
			Author:   b.Author,
			Price:    b.Price,
			Stock:    b.Stock,
			Category: b.Category,
			ImageURL: b.ImageURL,
			Featured: b.Featured,
		})
	}

	totalPages := int(total) / page.PageSize
	if int(total)%page.PageSize > 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (*BookDetail, error) {
	b, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(b), nil
}

// BookDetail 图书详情DTO
type BookDetail struct {
	ID            string `json:"id"`
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	Stock         int    `json:"stock"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	Language      string `json:"language"`
	Pages         int    `json:"pages"`
	PublishedDate string `json:"published_date"`
	Featured      bool   `json:"featured"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toDetail(b *book.Book) *BookDetail {
	return &BookDetail{
		ID:            b.ID,
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Description:   b.Description,
		Price:         b.Price,
		Stock:         b.Stock,
		Category:      b.Category,
		ImageURL:      b.ImageURL,
		Language:      b.Language,
		Pages:         b.Pages,
		PublishedDate: b.PublishedDate,
		Featured:      b.Featured,
		CreatedAt:     b.CreatedAt.Format(time.DateTime),
		UpdatedAt:     b.UpdatedAt.Format(time.DateTime),
	}
}
