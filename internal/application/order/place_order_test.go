package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

type published struct {
	routingKey string
	message    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{routingKey: routingKey, message: message})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	books     book.Repository
	orders    order.Repository
	carts     cart.Repository
	publisher *recordingPublisher
	uc        *PlaceOrderUseCase
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(50)
	f := &fixture{
		books:     memory.NewBookRepository(store),
		orders:    memory.NewOrderRepository(store),
		carts:     memory.NewCartRepository(store),
		publisher: &recordingPublisher{},
		clock:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.uc = NewPlaceOrderUseCase(f.orders, f.books, f.carts, store, f.publisher, order.DefaultPricing(), time.Hour)
	f.uc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) seed(t *testing.T, id string, price int64, stock int) {
	t.Helper()
	require.NoError(t, f.books.Create(context.Background(), &book.Book{
		ID: id, ISBN: "isbn-" + id, Title: "书" + id, Author: "作者" + id,
		Price: price, Stock: stock, CreatedAt: f.clock, UpdatedAt: f.clock,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Stock
}

func (f *fixture) orderCount(t *testing.T, userID string) int {
	t.Helper()
	_, total, err := f.orders.ListByUserID(context.Background(), userID, shared.Page{Page: 1, PageSize: 100})
	require.NoError(t, err)
	return int(total)
}

func shipping() order.ShippingAddress {
	return order.ShippingAddress{
		Name:    "张三",
		Phone:   "01712345678",
		Address: "House 12, Road 5",
		City:    "Dhaka",
	}
}

func command(userID string, items ...PlaceOrderItem) PlaceOrderCommand {
	return PlaceOrderCommand{UserID: userID, Items: items, Shipping: shipping()}
}

func item(bookID string, qty int, price int64) PlaceOrderItem {
	return PlaceOrderItem{BookID: bookID, Quantity: qty, Price: price}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "b1", 25000, 10)
	f.seed(t, "b2", 30000, 1)

	_, err := f.carts.Add(ctx, "u1", cart.Item{BookID: "b1", Quantity: 2, Price: 25000})
	require.NoError(t, err)

	o, err := f.uc.Execute(ctx, command("u1", item("b1", 2, 25000), item("b2", 1, 30000)))
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Regexp(t, `^BW20240501100000\d{6}$`, o.OrderNo)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, f.clock, o.CreatedAt)
	assert.Equal(t, int64(80000), o.Subtotal)
	assert.Equal(t, int64(18000), o.CourierCharge)
	assert.Equal(t, int64(1000), o.CODFee)
	assert.Equal(t, int64(99000), o.Total)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "书b1", o.Items[0].Title)
	assert.Equal(t, "作者b2", o.Items[1].Author)

	assert.Equal(t, 8, f.stock(t, "b1"))
	assert.Equal(t, 0, f.stock(t, "b2"))

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Items, stored.Items)

	c, err := f.carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.Equal(t, 1, f.publisher.count())
	assert.Equal(t, order.EventPlaced, f.publisher.events[0].routingKey)
	assert.Equal(t, o.ID, f.publisher.events[0].message.(order.PlacedEvent).OrderID)
}

func TestPlaceOrder_SubmittedTotalIsKept(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", 25000, 10)

	total := int64(12345)
	cmd := command("u1", item("b1", 1, 25000))
	cmd.Total = &total

	o, err := f.uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), o.Total)
	assert.Equal(t, int64(25000), o.Subtotal)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", 25000, 10)
	negative := int64(-1)

	tests := []struct {
		name string
		cmd  PlaceOrderCommand
		want error
	}{
		{"未登录", command("", item("b1", 1, 100)), apperrors.ErrUnauthorized},
		{"空明细", command("u1"), order.ErrInvalidOrderItems},
		{"数量为0", command("u1", item("b1", 0, 100)), order.ErrInvalidQuantity},
		{"缺少图书ID", command("u1", item("", 1, 100)), order.ErrInvalidOrderItems},
		{"负金额", PlaceOrderCommand{UserID: "u1", Items: []PlaceOrderItem{item("b1", 1, 100)}, Total: &negative, Shipping: shipping()}, order.ErrInvalidTotal},
		{"缺少收货信息", PlaceOrderCommand{UserID: "u1", Items: []PlaceOrderItem{item("b1", 1, 100)}}, order.ErrInvalidShipping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, f.stock(t, "b1"))
}

func TestPlaceOrder_BookNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", 25000, 10)

	_, err := f.uc.Execute(context.Background(), command("u1", item("b1", 1, 25000), item("missing", 1, 100)))
	require.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Equal(t, "missing", apperrors.GetAppError(err).Details["book_id"])

	assert.Equal(t, 10, f.stock(t, "b1"))
	assert.Equal(t, 0, f.orderCount(t, "u1"))
}

// 任一图书库存不足时整个事务回滚，其它图书库存不变
func TestPlaceOrder_InsufficientStockRollsBackAllItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "b1", 25000, 10)
	f.seed(t, "b2", 30000, 1)

	_, err := f.carts.Add(ctx, "u1", cart.Item{BookID: "b1", Quantity: 1})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, command("u1", item("b1", 3, 25000), item("b2", 2, 30000)))
	require.ErrorIs(t, err, book.ErrInsufficientStock)

	details := apperrors.GetAppError(err).Details
	assert.Equal(t, "b2", details["book_id"])
	assert.Equal(t, 1, details["available"])

	assert.Equal(t, 10, f.stock(t, "b1"))
	assert.Equal(t, 1, f.stock(t, "b2"))
	assert.Equal(t, 0, f.orderCount(t, "u1"))
	assert.Equal(t, 0, f.publisher.count())

	c, err := f.carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty(), "失败的下单不应清空购物车")
}

// 同一本书分多行提交时按合计数量校验库存
func TestPlaceOrder_AggregatesRepeatedBook(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", 25000, 3)

	_, err := f.uc.Execute(context.Background(), command("u1", item("b1", 2, 25000), item("b1", 2, 25000)))
	require.ErrorIs(t, err, book.ErrInsufficientStock)
	assert.Equal(t, 3, f.stock(t, "b1"))

	o, err := f.uc.Execute(context.Background(), command("u1", item("b1", 2, 25000), item("b1", 1, 25000)))
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, 0, f.stock(t, "b1"))
}

// 一小时内提交相同的订单被拒绝，库存不变
func TestPlaceOrder_DuplicateWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "B1", 25000, 10)

	_, err := f.uc.Execute(ctx, command("U", item("B1", 1, 25000)))
	require.NoError(t, err)
	assert.Equal(t, 9, f.stock(t, "B1"))

	f.clock = f.clock.Add(5 * time.Minute)
	_, err = f.uc.Execute(ctx, command("U", item("B1", 1, 25000)))
	require.ErrorIs(t, err, order.ErrDuplicateOrder)

	assert.Equal(t, 9, f.stock(t, "B1"))
	assert.Equal(t, 1, f.orderCount(t, "U"))
}

func TestPlaceOrder_DuplicateIgnoresOrderAndPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "b1", 25000, 10)
	f.seed(t, "b2", 30000, 10)

	_, err := f.uc.Execute(ctx, command("u1", item("b1", 1, 25000), item("b2", 2, 30000)))
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Minute)
	cmd := command("u1", item("b2", 2, 1), item("b1", 1, 1))
	cmd.Items[0].Title = "改过的书名"
	_, err = f.uc.Execute(ctx, cmd)
	assert.ErrorIs(t, err, order.ErrDuplicateOrder)
}

func TestPlaceOrder_NotDuplicate(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		userID  string
		items   []PlaceOrderItem
	}{
		{"数量不同", time.Minute, "u1", []PlaceOrderItem{item("b1", 2, 25000), item("b2", 1, 30000)}},
		{"增加条目", time.Minute, "u1", []PlaceOrderItem{item("b1", 1, 25000), item("b2", 1, 30000), item("b3", 1, 100)}},
		{"减少条目", time.Minute, "u1", []PlaceOrderItem{item("b1", 1, 25000)}},
		{"超过时间窗口", time.Hour + time.Second, "u1", []PlaceOrderItem{item("b1", 1, 25000), item("b2", 1, 30000)}},
		{"其他用户", time.Minute, "u2", []PlaceOrderItem{item("b1", 1, 25000), item("b2", 1, 30000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.seed(t, "b1", 25000, 10)
			f.seed(t, "b2", 30000, 10)
			f.seed(t, "b3", 100, 10)

			_, err := f.uc.Execute(ctx, command("u1", item("b1", 1, 25000), item("b2", 1, 30000)))
			require.NoError(t, err)

			f.clock = f.clock.Add(tt.advance)
			_, err = f.uc.Execute(ctx, command(tt.userID, tt.items...))
			assert.NoError(t, err)
		})
	}
}

// 下单后修改图书信息不影响订单中的快照
func TestPlaceOrder_SnapshotIsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "b1", 25000, 10)

	o, err := f.uc.Execute(ctx, command("u1", item("b1", 1, 25000)))
	require.NoError(t, err)

	b, err := f.books.FindByID(ctx, "b1")
	require.NoError(t, err)
	b.Title = "新书名"
	b.Price = 99900
	require.NoError(t, f.books.Update(ctx, b))

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "书b1", stored.Items[0].Title)
	assert.Equal(t, int64(25000), stored.Items[0].Price)
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", 25000, 10)
	f.publisher.err = errors.New("broker down")

	o, err := f.uc.Execute(context.Background(), command("u1", item("b1", 1, 25000)))
	require.NoError(t, err)
	assert.NotNil(t, o)
	assert.Equal(t, 9, f.stock(t, "b1"))
}

// 库存3，两个用户同时各买2本：恰好一个成功
func TestPlaceOrder_ConcurrentCheckoutSameBook(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	f.seed(t, "A", 25000, 3)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), command(uid, item("A", 2, 25000)))
		}(i, uid)
	}
	wg.Wait()

	succeeded, failed := 0, 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, book.ErrInsufficientStock)
		assert.Equal(t, "A", apperrors.GetAppError(err).Details["book_id"])
		failed++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.stock(t, "A"))
	assert.Equal(t, 1, f.orderCount(t, "u1")+f.orderCount(t, "u2"))
}

func TestPlaceOrder_ConcurrentStockNeverNegative(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		buyers = 12
		stock  = 5
	)
	f := newFixture(t)
	f.seed(t, "A", 25000, stock)
	f.seed(t, "B", 30000, 100)

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := "user-" + string(rune('a'+i))
			_, err := f.uc.Execute(context.Background(), command(uid, item("B", 1, 30000), item("A", 1, 25000)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, 0, f.stock(t, "A"))
	assert.Equal(t, 100-stock, f.stock(t, "B"))

	all, total, err := f.orders.List(context.Background(), order.Filter{Page: shared.Page{Page: 1, PageSize: 100}})
	require.NoError(t, err)
	assert.Equal(t, int64(stock), total)
	assert.Len(t, all, stock)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{order.ErrDuplicateOrder, "duplicate"},
		{book.NotFound("x"), "book_not_found"},
		{book.InsufficientStock("x", 1), "insufficient_stock"},
		{apperrors.WithCode(errors.New("conflict"), apperrors.ErrCodeTransactionConflict, "busy"), "conflict"},
		{order.ErrInvalidShipping, "invalid"},
		{errors.New("db down"), "infrastructure"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureReason(tt.err))
	}
}
