package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookworld/internal/domain/book"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// bookRepository 图书仓储(MySQL)
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	if err := getDB(ctx, r.db).Create(toBookModel(b)).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", b.ID).
		Select("*").Omit("id", "created_at").Updates(toBookModel(b))
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		// MySQL只统计实际变化的行，内容未变时需要再确认记录是否存在
		return r.ensureExists(ctx, b.ID)
	}
	return nil
}

func (r *bookRepository) ensureExists(ctx context.Context, id string) error {
	var n int64
	if err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperrors.Wrap(err, "查询图书失败")
	}
	if n == 0 {
		return book.NotFound(id)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.NotFound(id)
	}
	return nil
}

var bookOrderClauses = map[string]string{
	book.SortCreatedDesc: "created_at DESC, id DESC",
	book.SortPriceAsc:    "price ASC, id ASC",
	book.SortPriceDesc:   "price DESC, id DESC",
	book.SortTitleAsc:    "title ASC, id ASC",
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := getDB(ctx, r.db).Model(&BookModel{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}
	if params.Keyword != "" {
		query = query.Where("title LIKE ?", "%"+params.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	page := params.Page.Normalize()
	var models []BookModel
	err := query.Order(bookOrderClauses[book.NormalizeSort(params.SortBy)]).
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// LockByID SELECT ... FOR UPDATE，必须在事务内调用
func (r *bookRepository) LockByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateStock UPDATE books SET stock = stock + ? WHERE id = ? AND stock + ? >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id string, delta int) error {
	db := getDB(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 图书不存在或库存不足，再查一次区分原因
	var model BookModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.NotFound(id)
		}
		return apperrors.Wrap(err, "查询图书失败")
	}
	return book.InsufficientStock(id, model.Stock)
}
