package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/mq"
)

type fakeCourier struct {
	mu        sync.Mutex
	createErr error
	created   []courier.ConsignmentRequest
	cancelled []string
	statuses  map[string]string
}

func (c *fakeCourier) Balance(context.Context) (float64, error) { return 0, nil }

func (c *fakeCourier) CreateConsignment(_ context.Context, req courier.ConsignmentRequest) (*courier.Consignment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = append(c.created, req)
	return &courier.Consignment{
		ConsignmentID: "cid-" + req.Invoice,
		Invoice:       req.Invoice,
		TrackingCode:  "TRK-" + req.Invoice,
		Status:        "in_review",
	}, nil
}

func (c *fakeCourier) StatusByConsignmentID(_ context.Context, id string) (string, error) {
	return c.statuses[id], nil
}

func (c *fakeCourier) BulkStatus(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if st, ok := c.statuses[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (c *fakeCourier) Cancel(_ context.Context, id, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = append(c.cancelled, id)
	return nil
}

func (c *fakeCourier) DeliveryCharge(context.Context, courier.DeliveryChargeRequest) (float64, error) {
	return 0, nil
}

// failingShipmentRepo 回写运单信息时失败
type failingShipmentRepo struct {
	order.Repository
}

func (failingShipmentRepo) UpdateShipment(context.Context, string, order.Shipment, time.Time) error {
	return errors.New("db down")
}

func seedOrder(t *testing.T, repo order.Repository, id, userID string, status order.Status, createdAt time.Time) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:       id,
		OrderNo:  order.GenerateOrderNo(createdAt),
		UserID:   userID,
		Items:    []order.Item{{BookID: "b1", Title: "Go语言", Price: 25000, Quantity: 2}},
		Subtotal: 50000, CourierCharge: 18000, CODFee: 1000, Total: 69000,
		Shipping:  shipping(),
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestQuery_GetRestrictedToOwnerOrStaff(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	seedOrder(t, repo, "o1", "u1", order.StatusPending, time.Now())
	uc := NewQueryUseCase(repo)
	ctx := context.Background()

	o, err := uc.Get(ctx, Viewer{UserID: "u1", Role: user.RoleUser}, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = uc.Get(ctx, Viewer{UserID: "u2", Role: user.RoleUser}, "o1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = uc.Get(ctx, Viewer{UserID: "staff", Role: user.RoleModerator}, "o1")
	assert.NoError(t, err)

	_, err = uc.Get(ctx, Viewer{UserID: "u1"}, "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestQuery_Lists(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	seedOrder(t, repo, "o1", "u1", order.StatusPending, base)
	seedOrder(t, repo, "o2", "u1", order.StatusCompleted, base.Add(time.Minute))
	seedOrder(t, repo, "o3", "u2", order.StatusPending, base.Add(2*time.Minute))
	uc := NewQueryUseCase(repo)
	ctx := context.Background()

	mine, err := uc.ListMine(ctx, "u1", shared.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)
	assert.Equal(t, 1, mine.Page)
	assert.Equal(t, 20, mine.PageSize)
	require.Len(t, mine.Orders, 2)
	assert.Equal(t, "o2", mine.Orders[0].ID)

	pending, err := uc.ListAll(ctx, order.Filter{Status: order.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Total)
	assert.Equal(t, "o3", pending.Orders[0].ID)

	_, err = uc.ListAll(ctx, order.Filter{Status: "paid"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestUpdateStatus(t *testing.T) {
	store := memory.NewStore(3)
	repo := memory.NewOrderRepository(store)
	seedOrder(t, repo, "o1", "u1", order.StatusPending, time.Now())
	pub := &recordingPublisher{}
	uc := NewUpdateStatusUseCase(repo, store, pub)
	ctx := context.Background()

	o, err := uc.Execute(ctx, UpdateStatusCommand{OrderID: "o1", Status: "shipped", OperatorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, o.Status)

	stored, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, stored.Status)

	require.Equal(t, 1, pub.count())
	event := pub.events[0].message.(order.StatusChangedEvent)
	assert.Equal(t, order.StatusPending, event.From)
	assert.Equal(t, order.StatusShipped, event.To)
	assert.Equal(t, "admin", event.ChangedBy)

	_, err = uc.Execute(ctx, UpdateStatusCommand{OrderID: "o1", Status: "cancelled"})
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = uc.Execute(ctx, UpdateStatusCommand{OrderID: "o1", Status: "paid"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	_, err = uc.Execute(ctx, UpdateStatusCommand{OrderID: "missing", Status: "completed"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, 1, pub.count())
}

func TestCreateShipment_RecordsConsignment(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	seedOrder(t, repo, "o1", "u1", order.StatusProcessing, time.Now())
	client := &fakeCourier{}
	uc := NewCreateShipmentUseCase(repo, client)
	ctx := context.Background()

	o, err := uc.Execute(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "cid-o1", o.Shipment.ConsignmentID)
	assert.Equal(t, "TRK-o1", o.Shipment.TrackingCode)
	assert.Equal(t, order.StatusProcessing, o.Status, "建单不修改订单状态")

	require.Len(t, client.created, 1)
	assert.Equal(t, int64(690), client.created[0].CODAmount)
	assert.Equal(t, 2, client.created[0].TotalLot)

	stored, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "in_review", stored.Shipment.CourierStatus)
	assert.NotNil(t, stored.Shipment.ShippedAt)

	_, err = uc.Execute(ctx, "o1")
	assert.ErrorIs(t, err, order.ErrAlreadyShipped)
}

func TestCreateShipment_RejectsTerminalOrder(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	seedOrder(t, repo, "o1", "u1", order.StatusCancelled, time.Now())
	client := &fakeCourier{}

	_, err := NewCreateShipmentUseCase(repo, client).Execute(context.Background(), "o1")
	assert.ErrorIs(t, err, order.ErrNotShippable)
	assert.Empty(t, client.created)
}

func TestCreateShipment_CourierFailure(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	seedOrder(t, repo, "o1", "u1", order.StatusPending, time.Now())
	client := &fakeCourier{createErr: apperrors.ErrCourierError}

	_, err := NewCreateShipmentUseCase(repo, client).Execute(context.Background(), "o1")
	assert.ErrorIs(t, err, apperrors.ErrCourierError)
	assert.Empty(t, client.cancelled)
}

// 回写订单失败时取消已建的运单
func TestCreateShipment_CompensatesWhenRecordFails(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	seedOrder(t, repo, "o1", "u1", order.StatusPending, time.Now())
	client := &fakeCourier{}

	_, err := NewCreateShipmentUseCase(failingShipmentRepo{repo}, client).Execute(context.Background(), "o1")
	require.Error(t, err)
	assert.Equal(t, []string{"cid-o1"}, client.cancelled)

	stored, err := repo.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.False(t, stored.Shipment.HasConsignment())
}

func TestSyncCourierStatus(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	ctx := context.Background()
	now := time.Now()

	open := seedOrder(t, repo, "o1", "u1", order.StatusShipped, now)
	require.NoError(t, repo.UpdateShipment(ctx, open.ID, order.Shipment{ConsignmentID: "c1", CourierStatus: "in_review"}, now))
	same := seedOrder(t, repo, "o2", "u1", order.StatusProcessing, now)
	require.NoError(t, repo.UpdateShipment(ctx, same.ID, order.Shipment{ConsignmentID: "c2", CourierStatus: "pending"}, now))
	done := seedOrder(t, repo, "o3", "u1", order.StatusCompleted, now)
	require.NoError(t, repo.UpdateShipment(ctx, done.ID, order.Shipment{ConsignmentID: "c3", CourierStatus: "pending"}, now))
	seedOrder(t, repo, "o4", "u1", order.StatusPending, now)

	client := &fakeCourier{statuses: map[string]string{"c1": "delivered", "c2": "pending", "c3": "delivered"}}
	result, err := NewSyncCourierStatusUseCase(repo, client, 10).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Updated)

	o1, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", o1.Shipment.CourierStatus)
	assert.Equal(t, order.StatusShipped, o1.Status, "同步不修改订单状态")

	o3, err := repo.FindByID(ctx, "o3")
	require.NoError(t, err)
	assert.Equal(t, "pending", o3.Shipment.CourierStatus)
}

func TestEventHandler_LowStock(t *testing.T) {
	store := memory.NewStore(3)
	books := memory.NewBookRepository(store)
	ctx := context.Background()
	now := time.Now()
	for id, stock := range map[string]int{"b1": 2, "b2": 50} {
		require.NoError(t, books.Create(ctx, newBookForEvent(id, stock, now)))
	}

	h := NewEventHandler(books, 5)
	low, err := h.checkLowStock(ctx, order.PlacedEvent{
		OrderID: "o1",
		Items:   []order.EventLine{{BookID: "b1", Quantity: 1}, {BookID: "b2", Quantity: 1}, {BookID: "b1", Quantity: 1}, {BookID: "gone", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, low)

	body, err := json.Marshal(order.PlacedEvent{OrderID: "o1", Items: []order.EventLine{{BookID: "b1", Quantity: 1}}})
	require.NoError(t, err)
	assert.NoError(t, h.Handle(ctx, mq.Delivery{RoutingKey: order.EventPlaced, Body: body}))
	assert.NoError(t, h.Handle(ctx, mq.Delivery{RoutingKey: order.EventPlaced, Body: []byte("{")}))
	assert.NoError(t, h.Handle(ctx, mq.Delivery{RoutingKey: order.EventStatusChanged, Body: []byte(`{"order_id":"o1","from":"pending","to":"shipped"}`)}))
	assert.NoError(t, h.Handle(ctx, mq.Delivery{RoutingKey: "order.unknown"}))
}

func newBookForEvent(id string, stock int, now time.Time) *book.Book {
	return &book.Book{ID: id, ISBN: "isbn-" + id, Title: "书" + id, Price: 100, Stock: stock, CreatedAt: now, UpdatedAt: now}
}
