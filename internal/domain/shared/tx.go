// Package shared 领域层共享的端口定义
package shared

import (
	"context"
	"time"
)

// TxManager 事务管理器
// fn内通过txCtx调用的仓储方法都在同一事务中执行：
// fn返回nil提交，返回错误回滚。冲突重试由具体实现负责，调用方不做重试。
type TxManager interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Clock 当前时间来源，测试中可替换
type Clock func() time.Time

// Page 分页参数
type Page struct {
	Page     int
	PageSize int
}

// Normalize 修正非法分页参数
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

// Offset 偏移量
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}
