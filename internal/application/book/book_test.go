package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
)

func newService() book.Service {
	return book.NewService(memory.NewBookRepository(memory.NewStore(3)))
}

func input(title string, price int64, stock int) book.Input {
	return book.Input{
		Title:    title,
		Author:   "Alan Donovan",
		Category: "programming",
		Price:    price,
		Stock:    stock,
	}
}

func TestBookUseCases_Lifecycle(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := NewPublishBookUseCase(svc).Execute(ctx, input("Go程序设计语言", 25000, 10), "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 10, created.Stock)

	// 非管理员修改时库存保持不变
	updated, err := NewUpdateBookUseCase(svc).Execute(ctx, UpdateBookRequest{
		ID:    created.ID,
		Input: input("Go程序设计语言（第2版）", 30000, 99),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go程序设计语言（第2版）", updated.Title)
	assert.Equal(t, int64(30000), updated.Price)
	assert.Equal(t, 10, updated.Stock)

	updated, err = NewUpdateBookUseCase(svc).Execute(ctx, UpdateBookRequest{
		ID:      created.ID,
		Input:   input("Go程序设计语言（第2版）", 30000, 99),
		IsAdmin: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Stock)

	detail, err := NewGetBookUseCase(svc).Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Title, detail.Title)

	require.NoError(t, NewDeleteBookUseCase(svc).Execute(ctx, created.ID, "admin"))
	_, err = NewGetBookUseCase(svc).Execute(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestPublishBook_Invalid(t *testing.T) {
	_, err := NewPublishBookUseCase(newService()).Execute(context.Background(), book.Input{Title: "无作者"}, "admin")
	assert.ErrorIs(t, err, book.ErrInvalidBook)
}

func TestListBooks(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	publish := NewPublishBookUseCase(svc)
	for _, in := range []book.Input{
		input("Go语言实战", 30000, 1),
		input("Go并发编程", 20000, 1),
		input("数据库系统", 40000, 1),
	} {
		_, err := publish.Execute(ctx, in, "admin")
		require.NoError(t, err)
	}

	resp, err := NewListBooksUseCase(svc).Execute(ctx, ListBooksRequest{
		Page: 1, PageSize: 1, Keyword: "go", SortBy: book.SortPriceAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.List, 1)
	assert.Equal(t, "Go并发编程", resp.List[0].Title)

	resp, err = NewListBooksUseCase(svc).Execute(ctx, ListBooksRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.PageSize)
	assert.Len(t, resp.List, 3)
}
