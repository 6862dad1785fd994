package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
	"github.com/xiebiao/bookworld/pkg/mq"
)

// EventHandler 处理订单事件（worker消费）
type EventHandler struct {
	bookRepo          book.Repository
	lowStockThreshold int
}

// NewEventHandler 创建订单事件处理器
func NewEventHandler(bookRepo book.Repository, lowStockThreshold int) *EventHandler {
	return &EventHandler{bookRepo: bookRepo, lowStockThreshold: lowStockThreshold}
}

// Handle 按路由键分发，未知事件直接确认
func (h *EventHandler) Handle(ctx context.Context, d mq.Delivery) error {
	switch d.RoutingKey {
	case order.EventPlaced:
		var e order.PlacedEvent
		if err := json.Unmarshal(d.Body, &e); err != nil {
			// 格式错误的消息重试也不会成功
			logger.Ctx(ctx).Error().Err(err).Str("message_id", d.MessageID).Msg("下单事件格式错误，已丢弃")
			return nil
		}
		_, err := h.checkLowStock(ctx, e)
		return err
	case order.EventStatusChanged:
		var e order.StatusChangedEvent
		if err := json.Unmarshal(d.Body, &e); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("message_id", d.MessageID).Msg("状态变更事件格式错误，已丢弃")
			return nil
		}
		logger.Ctx(ctx).Info().
			Str("order_id", e.OrderID).
			Str("from", string(e.From)).
			Str("to", string(e.To)).
			Str("changed_by", e.ChangedBy).
			Msg("订单状态已变更")
		return nil
	default:
		logger.Ctx(ctx).Debug().Str("routing_key", d.RoutingKey).Msg("忽略未知事件")
		return nil
	}
}

// checkLowStock 重新读取订单中的图书，返回库存低于阈值的图书ID
func (h *EventHandler) checkLowStock(ctx context.Context, e order.PlacedEvent) ([]string, error) {
	seen := make(map[string]bool, len(e.Items))
	var low []string
	for _, it := range e.Items {
		if seen[it.BookID] {
			continue
		}
		seen[it.BookID] = true

		b, err := h.bookRepo.FindByID(ctx, it.BookID)
		if err != nil {
			if errors.Is(err, book.ErrBookNotFound) {
				continue
			}
			return nil, fmt.Errorf("读取图书%s失败: %w", it.BookID, err)
		}
		if b.IsLowStock(h.lowStockThreshold) {
			low = append(low, b.ID)
			metrics.BooksLowStockTotal.Inc()
			logger.Ctx(ctx).Warn().
				Str("book_id", b.ID).
				Str("title", b.Title).
				Int("stock", b.Stock).
				Str("order_id", e.OrderID).
				Msg("图书库存偏低")
		}
	}
	return low, nil
}
