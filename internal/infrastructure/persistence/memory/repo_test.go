package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/site"
	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

func TestBookRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(NewStore(1))
	seedBook(t, repo, "b1", 5)

	t.Run("ISBN重复", func(t *testing.T) {
		err := repo.Create(ctx, &book.Book{ID: "b9", ISBN: "isbn-b1"})
		assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("库存不能为负", func(t *testing.T) {
		err := repo.UpdateStock(ctx, "b1", -6)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	})

	t.Run("返回值是副本", func(t *testing.T) {
		b, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		b.Stock = 100

		again, err := repo.FindByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 5, again.Stock)
	})
}

func TestBookRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(NewStore(1))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	featured := true
	books := []*book.Book{
		{ID: "a", ISBN: "1", Title: "Go语言编程", Category: "tech", Price: 300, Featured: true, CreatedAt: base},
		{ID: "b", ISBN: "2", Title: "三体", Category: "novel", Price: 100, CreatedAt: base.Add(time.Hour)},
		{ID: "c", ISBN: "3", Title: "Go并发", Category: "tech", Price: 200, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, b := range books {
		require.NoError(t, repo.Create(ctx, b))
	}

	got, total, err := repo.List(ctx, book.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"c", "b", "a"}, bookIDs(got))

	got, total, err = repo.List(ctx, book.ListParams{Category: "tech", SortBy: book.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"c", "a"}, bookIDs(got))

	got, _, err = repo.List(ctx, book.ListParams{Keyword: "go", Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bookIDs(got))

	got, total, err = repo.List(ctx, book.ListParams{Page: shared.Page{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"a"}, bookIDs(got))
}

func bookIDs(books []*book.Book) []string {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(NewStore(1))
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, repo.Create(ctx, &order.Order{
			ID: id, UserID: "u1", Status: order.StatusPending,
			Items:     []order.Item{{BookID: "b1", Quantity: 1}},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &order.Order{ID: "x", UserID: "u2", Status: order.StatusPending, CreatedAt: base}))

	since, err := repo.ListByUserSince(ctx, "u1", base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "o3", since[0].ID)
	assert.Equal(t, "o2", since[1].ID)

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	again, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)

	require.NoError(t, repo.UpdateStatus(ctx, "o1", order.StatusShipped, base))
	shippedAt := base
	require.NoError(t, repo.UpdateShipment(ctx, "o2", order.Shipment{ConsignmentID: "c-2", ShippedAt: &shippedAt}, base))

	open, err := repo.ListWithOpenConsignments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "o2", open[0].ID)

	list, total, err := repo.List(ctx, order.Filter{Status: order.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", order.StatusShipped, base), order.ErrOrderNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore(1))
	now := time.Now()

	require.NoError(t, repo.Create(ctx, user.NewUser("u1", "a@example.com", "hash", "甲", user.RoleAdmin, now)))
	err := repo.Create(ctx, user.NewUser("u2", "a@example.com", "hash", "乙", user.RoleUser, now))
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(NewStore(1))

	_, err := repo.Add(ctx, "u1", cart.Item{BookID: "b1", Price: 100, Quantity: 1})
	require.NoError(t, err)
	c, err := repo.Add(ctx, "u1", cart.Item{BookID: "b1", Price: 120, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, int64(120), c.Items[0].Price)

	c, err = repo.Merge(ctx, "u1", []cart.Item{{BookID: "b2", Quantity: 1}, {BookID: "b1", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "b1", c.Items[0].BookID)
	assert.Equal(t, 4, c.Items[0].Quantity)

	_, err = repo.SetQuantity(ctx, "u1", "b9", 1)
	assert.ErrorIs(t, err, cart.ErrItemNotInCart)

	c, err = repo.Remove(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	require.NoError(t, repo.Clear(ctx, "u1"))
	c, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestSiteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSiteRepository(NewStore(1))

	assert.ErrorIs(t, repo.SetSetting(ctx, "theme", "dark"), site.ErrUnknownSetting)
	require.NoError(t, repo.SetSetting(ctx, site.SettingSiteName, "书香世界"))
	settings, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "书香世界", settings[site.SettingSiteName])

	require.NoError(t, repo.SaveMember(ctx, site.TeamMember{ID: "m2", Name: "乙", Position: 2}))
	require.NoError(t, repo.SaveMember(ctx, site.TeamMember{ID: "m1", Name: "甲", Position: 1}))
	team, err := repo.ListTeam(ctx)
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "m1", team[0].ID)

	assert.ErrorIs(t, repo.DeleteMember(ctx, "m9"), site.ErrMemberNotFound)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SaveSession(ctx, "u1", map[string]interface{}{"ip": "127.0.0.1"}, time.Hour))
	got, err := s.GetSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", got["ip"])

	require.NoError(t, s.AddToBlacklist(ctx, "tok", time.Minute))
	in, err := s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, in)

	now = now.Add(2 * time.Hour)
	in, err = s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, in)
	_, err = s.GetSession(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
