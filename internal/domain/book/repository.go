package book

import (
	"context"

	"github.com/xiebiao/bookworld/internal/domain/shared"
)

// Repository 图书仓储接口
// 带事务的方法（LockByID、UpdateStock）必须用TxManager传入的txCtx调用。
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在时返回NotFound(id)
	FindByID(ctx context.Context, id string) (*Book, error)

	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	Update(ctx context.Context, book *Book) error

	Delete(ctx context.Context, id string) error

	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 在事务内读取并锁定图书（MySQL为SELECT FOR UPDATE，文档存储记录读版本）
	LockByID(ctx context.Context, id string) (*Book, error)

	// UpdateStock 原子地调整库存，delta为负表示扣减
	// 调整后库存为负时返回InsufficientStock
	UpdateStock(ctx context.Context, id string, delta int) error
}

// 排序方式
const (
	SortCreatedDesc = "created_at:desc"
	SortPriceAsc    = "price:asc"
	SortPriceDesc   = "price:desc"
	SortTitleAsc    = "title:asc"
)

// ListParams 列表查询参数
type ListParams struct {
	shared.Page
	Category string
	Featured *bool
	Keyword  string // 匹配书名
	SortBy   string
}

// NormalizeSort 非法排序方式回退为按创建时间倒序
func NormalizeSort(sortBy string) string {
	switch sortBy {
	case SortPriceAsc, SortPriceDesc, SortTitleAsc:
		return sortBy
	default:
		return SortCreatedDesc
	}
}
