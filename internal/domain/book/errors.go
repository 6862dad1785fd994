package book

import (
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// 图书领域错误定义
var (
	ErrBookNotFound      = apperrors.ErrBookNotFound
	ErrInsufficientStock = apperrors.ErrInsufficientStock
	ErrISBNDuplicate     = apperrors.ErrISBNDuplicate

	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidBook     = apperrors.New(apperrors.ErrCodeInvalidParams, "图书信息不合法")
)

// NotFound 指定图书不存在
func NotFound(id string) error {
	return ErrBookNotFound.WithDetails(map[string]interface{}{"book_id": id})
}

// InsufficientStock 指定图书库存不足
func InsufficientStock(id string, available int) error {
	return ErrInsufficientStock.WithDetails(map[string]interface{}{
		"book_id":   id,
		"available": available,
	})
}
