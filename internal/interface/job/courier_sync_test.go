package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookworld/internal/infrastructure/queue"
)

type bulkStatusClient struct {
	courier.Client
	statuses map[string]string
	err      error
}

func (c bulkStatusClient) BulkStatus(context.Context, []string) (map[string]string, error) {
	return c.statuses, c.err
}

func TestCourierSyncHandler(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewStore(3))
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &order.Order{
		ID: "o1", UserID: "u1", Status: order.StatusShipped,
		Shipment:  order.Shipment{ConsignmentID: "c1", CourierStatus: "in_review"},
		CreatedAt: now, UpdatedAt: now,
	}))

	h := NewCourierSyncHandler(apporder.NewSyncCourierStatusUseCase(repo, bulkStatusClient{statuses: map[string]string{"c1": "delivered"}}, 10))
	require.NoError(t, h.ProcessTask(ctx, queue.NewCourierSyncTask()))

	o, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", o.Shipment.CourierStatus)

	failing := NewCourierSyncHandler(apporder.NewSyncCourierStatusUseCase(repo, bulkStatusClient{err: errors.New("timeout")}, 10))
	assert.Error(t, failing.ProcessTask(ctx, queue.NewCourierSyncTask()))
}
