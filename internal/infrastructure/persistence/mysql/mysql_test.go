package mysql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

func TestErrorClassification(t *testing.T) {
	deadlock := &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	lockWait := &mysqldriver.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	dup := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'isbn'"}

	tests := []struct {
		name      string
		err       error
		retryable bool
		duplicate bool
	}{
		{"nil", nil, false, false},
		{"死锁", deadlock, true, false},
		{"锁等待超时", lockWait, true, false},
		{"包装后的死锁", apperrors.Wrap(deadlock, "锁定图书失败"), true, false},
		{"fmt包装的死锁", fmt.Errorf("tx: %w", deadlock), true, false},
		{"唯一索引冲突", dup, false, true},
		{"gorm唯一索引冲突", gorm.ErrDuplicatedKey, false, true},
		{"其他错误", errors.New("connection refused"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryable(tt.err))
			assert.Equal(t, tt.duplicate, isDuplicateError(tt.err))
		})
	}
}

func TestOrderModelMapping(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	shippedAt := now.Add(time.Hour)
	o := &order.Order{
		ID: "o-1", OrderNo: "BW20240301080000123456", UserID: "u-1",
		Items: []order.Item{
			{BookID: "b-2", Title: "三体", Author: "刘慈欣", Price: 50000, Quantity: 2},
			{BookID: "b-1", Title: "活着", Author: "余华", Price: 30000, Quantity: 1},
		},
		Subtotal: 130000, CourierCharge: 0, CODFee: 1000, Total: 131000,
		Shipping: order.ShippingAddress{Name: "张三", Phone: "13800000000", Address: "人民路1号", City: "上海"},
		Status:   order.StatusShipped,
		Shipment: order.Shipment{ConsignmentID: "c-1", TrackingCode: "T1", CourierStatus: "in_review", ShippedAt: &shippedAt},
		CreatedAt: now, UpdatedAt: now,
	}

	m := toOrderModel(o)
	assert.Equal(t, "c-1", m.Shipment.ConsignmentID)
	assert.Equal(t, "上海", m.Shipping.City)
	assert.Len(t, m.Items, 2)
	assert.Equal(t, 1, m.Items[1].Position)
	assert.Equal(t, "o-1", m.Items[1].OrderID)

	assert.Equal(t, o, toOrderEntity(m))
}

func TestBookAndUserModelMapping(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	b := &book.Book{
		ID: "b-1", ISBN: "9787536692930", Title: "三体", Author: "刘慈欣", Price: 50000, Stock: 3,
		Category: "科幻", Pages: 302, PublishedDate: "2008-01-01", Featured: true, CreatedAt: now, UpdatedAt: now,
	}
	assert.Equal(t, b, toBookEntity(toBookModel(b)))

	// 没有ISBN的图书存为NULL
	noISBN := *b
	noISBN.ISBN = ""
	assert.Nil(t, toBookModel(&noISBN).ISBN)
	assert.Equal(t, &noISBN, toBookEntity(toBookModel(&noISBN)))

	u := user.NewUser("u-1", "a@example.com", "hash", "张三", user.RoleModerator, now)
	assert.Equal(t, u, toUserEntity(toUserModel(u)))

	// 未知角色按普通用户处理
	m := toUserModel(u)
	m.Role = "root"
	assert.Equal(t, user.RoleUser, toUserEntity(m).Role)
}
