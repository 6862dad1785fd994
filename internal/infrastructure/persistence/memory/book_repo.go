package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/book"
)

const collBooks = "books"

type bookRepository struct {
	store *Store
}

// NewBookRepository 创建图书仓储（内存文档存储）
func NewBookRepository(store *Store) book.Repository {
	return &bookRepository{store: store}
}

func cloneBook(b *book.Book) *book.Book {
	c := *b
	return &c
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	return r.store.do(ctx, func(t *tx) error {
		if b.ISBN != "" {
			for _, v := range t.scan(collBooks) {
				if v.(*book.Book).ISBN == b.ISBN {
					return book.ErrISBNDuplicate
				}
			}
		}
		t.put(collBooks, b.ID, cloneBook(b))
		return nil
	})
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var out *book.Book
	err := r.store.do(ctx, func(t *tx) error {
		v, ok := t.get(collBooks, id)
		if !ok {
			return book.NotFound(id)
		}
		out = cloneBook(v.(*book.Book))
		return nil
	})
	return out, err
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var out *book.Book
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collBooks) {
			if b := v.(*book.Book); b.ISBN == isbn {
				out = cloneBook(b)
				return nil
			}
		}
		return book.ErrBookNotFound
	})
	return out, err
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	return r.store.do(ctx, func(t *tx) error {
		if _, ok := t.get(collBooks, b.ID); !ok {
			return book.NotFound(b.ID)
		}
		t.put(collBooks, b.ID, cloneBook(b))
		return nil
	})
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	return r.store.do(ctx, func(t *tx) error {
		if _, ok := t.get(collBooks, id); !ok {
			return book.NotFound(id)
		}
		t.delete(collBooks, id)
		return nil
	})
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var matched []*book.Book
	err := r.store.do(ctx, func(t *tx) error {
		keyword := strings.ToLower(strings.TrimSpace(params.Keyword))
		for _, v := range t.scan(collBooks) {
			b := v.(*book.Book)
			if params.Category != "" && b.Category != params.Category {
				continue
			}
			if params.Featured != nil && b.Featured != *params.Featured {
				continue
			}
			if keyword != "" && !strings.Contains(strings.ToLower(b.Title), keyword) {
				continue
			}
			matched = append(matched, cloneBook(b))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortBooks(matched, params.SortBy)

	total := int64(len(matched))
	page := params.Page.Normalize()
	return paginate(matched, page.Offset(), page.PageSize), total, nil
}

func sortBooks(books []*book.Book, sortBy string) {
	less := func(i, j int) bool { return newer(books[i].CreatedAt, books[j].CreatedAt, books[i].ID, books[j].ID) }
	switch book.NormalizeSort(sortBy) {
	case book.SortPriceAsc:
		less = func(i, j int) bool { return books[i].Price < books[j].Price }
	case book.SortPriceDesc:
		less = func(i, j int) bool { return books[i].Price > books[j].Price }
	case book.SortTitleAsc:
		less = func(i, j int) bool { return books[i].Title < books[j].Title }
	}
	sort.SliceStable(books, less)
}

// LockByID 事务内读取会记录版本，提交时校验
func (r *bookRepository) LockByID(ctx context.Context, id string) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepository) UpdateStock(ctx context.Context, id string, delta int) error {
	return r.store.do(ctx, func(t *tx) error {
		v, ok := t.get(collBooks, id)
		if !ok {
			return book.NotFound(id)
		}
		b := cloneBook(v.(*book.Book))
		if b.Stock+delta < 0 {
			return book.InsufficientStock(id, b.Stock)
		}
		b.Stock += delta
		b.UpdatedAt = time.Now()
		t.put(collBooks, id, b)
		return nil
	})
}

// newer 按创建时间倒序，时间相同按ID
func newer(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
