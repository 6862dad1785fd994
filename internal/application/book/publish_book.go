package book

import (
	"context"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// PublishBookUseCase 图书上架用例（员工）
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
	}
}

// Execute 执行上架
// ISBN格式、价格范围、ISBN重复等校验由领域服务负责
func (uc *PublishBookUseCase) Execute(ctx context.Context, in book.Input, operatorID string) (*BookDetail, error) {
	b, err := uc.bookService.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("book_id", b.ID).Str("operator", operatorID).Msg("图书已上架")
	return toDetail(b), nil
}

// UpdateBookUseCase 修改图书
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 修改请求
type UpdateBookRequest struct {
	ID    string
	Input book.Input
	// IsAdmin 只有管理员可以直接修改库存
	IsAdmin    bool
	OperatorID string
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.Update(ctx, req.ID, req.Input, req.IsAdmin)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("book_id", b.ID).Str("operator", req.OperatorID).Msg("图书已修改")
	return toDetail(b), nil
}

// DeleteBookUseCase 下架图书
// 已下单的订单保存的是图书快照，删除图书不影响历史订单
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 执行下架
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id, operatorID string) error {
	if err := uc.bookService.Delete(ctx, id); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("book_id", id).Str("operator", operatorID).Msg("图书已下架")
	return nil
}
