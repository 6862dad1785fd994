package book

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service 图书领域服务
// 图书的增删改只对员工开放，权限由接口层校验
type Service interface {
	Create(ctx context.Context, in Input) (*Book, error)
	Get(ctx context.Context, id string) (*Book, error)
	// Update 覆盖图书信息，allowStock控制是否允许直接修改库存
	Update(ctx context.Context, id string, in Input, allowStock bool) (*Book, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, in Input) (*Book, error) {
	in.ISBN = CleanISBN(in.ISBN)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureISBNFree(ctx, in.ISBN, ""); err != nil {
		return nil, err
	}

	b := NewBook(uuid.NewString(), in, s.now())
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, in Input, allowStock bool) (*Book, error) {
	in.ISBN = CleanISBN(in.ISBN)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ISBN != b.ISBN {
		if err := s.ensureISBNFree(ctx, in.ISBN, id); err != nil {
			return nil, err
		}
	}

	b.Apply(in, allowStock, s.now())
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	params.Page = params.Page.Normalize()
	params.SortBy = NormalizeSort(params.SortBy)
	return s.repo.List(ctx, params)
}

func (s *service) ensureISBNFree(ctx context.Context, isbn, selfID string) error {
	if isbn == "" {
		return nil
	}
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrISBNDuplicate
	}
	return nil
}
