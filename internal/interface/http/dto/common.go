package dto

import "github.com/xiebiao/bookworld/internal/domain/shared"

// PageQuery 通用分页参数
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// ToPage 转为领域分页参数，默认值由Normalize补全
func (q PageQuery) ToPage() shared.Page {
	return shared.Page{Page: q.Page, PageSize: q.PageSize}
}
