package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
	"github.com/xiebiao/bookworld/pkg/mq"
	"github.com/xiebiao/bookworld/pkg/tracing"
)

// DefaultDuplicateWindow 重复下单判断的时间窗口
const DefaultDuplicateWindow = time.Hour

// PlaceOrderUseCase 下单用例
//
// 分两层：
//  1. 重复提交检查：事务外的一次读，近一小时内有(图书, 数量)完全相同的订单则拒绝。
//     只防误触和重试，两个几乎同时的重复请求仍可能都通过，由第2层保证库存正确。
//  2. 库存事务：锁定图书、校验库存、创建订单、扣减库存，全部成功或全部回滚。
//
// 事务本身不是幂等的，同样的输入执行两次会生成两个订单。
// 本用例不做任何自动重试，冲突重试只发生在存储层的TxManager里。
type PlaceOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	cartRepo  cart.Repository
	txManager shared.TxManager
	publisher mq.EventPublisher
	pricing   order.Pricing
	window    time.Duration
	now       shared.Clock
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	cartRepo cart.Repository,
	txManager shared.TxManager,
	publisher mq.EventPublisher,
	pricing order.Pricing,
	window time.Duration,
) *PlaceOrderUseCase {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &PlaceOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		cartRepo:  cartRepo,
		txManager: txManager,
		publisher: publisher,
		pricing:   pricing,
		window:    window,
		now:       time.Now,
	}
}

// PlaceOrderItem 下单明细，书名、作者、图片为空时用图书当前信息补齐；价格按提交的值保存
type PlaceOrderItem struct {
	BookID   string
	Quantity int
	Title    string
	Author   string
	Price    int64
	ImageURL string
}

// PlaceOrderCommand 下单请求
type PlaceOrderCommand struct {
	UserID string
	Items  []PlaceOrderItem
	// Total 客户端计算的总价，nil表示使用服务端报价
	Total    *int64
	Shipping order.ShippingAddress
}

// Execute 执行下单
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderCommand) (o *order.Order, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "order", "PlaceOrder",
		attribute.String("user_id", cmd.UserID),
		attribute.Int("items", len(cmd.Items)))
	metrics.OrdersInProgress.Inc()
	defer func() {
		metrics.OrdersInProgress.Dec()
		metrics.ObserveOrder(failureReason(err), time.Since(start))
		tracing.EndSpan(span, err)
	}()

	if err := validate(cmd); err != nil {
		return nil, err
	}

	if err := uc.checkDuplicate(ctx, cmd.UserID, cmd.Items); err != nil {
		return nil, err
	}

	o, err = uc.placeInTx(ctx, cmd)
	if err != nil {
		logger.Ctx(ctx).Info().Err(err).Str("user_id", cmd.UserID).Msg("下单失败")
		return nil, err
	}

	uc.afterPlaced(ctx, o)
	return o, nil
}

func validate(cmd PlaceOrderCommand) error {
	if cmd.UserID == "" {
		return apperrors.ErrUnauthorized
	}
	if len(cmd.Items) == 0 {
		return order.ErrInvalidOrderItems
	}
	for _, it := range cmd.Items {
		if it.BookID == "" {
			return order.ErrInvalidOrderItems
		}
		if it.Quantity <= 0 {
			return order.ErrInvalidQuantity.WithDetails(map[string]interface{}{"book_id": it.BookID})
		}
		if it.Price < 0 {
			return apperrors.ErrInvalidParams.WithDetails(map[string]interface{}{"book_id": it.BookID})
		}
	}
	if cmd.Total != nil && *cmd.Total < 0 {
		return order.ErrInvalidTotal
	}
	return cmd.Shipping.Validate()
}

// checkDuplicate 近期订单中存在相同(图书, 数量)多重集合时返回ErrDuplicateOrder
func (uc *PlaceOrderUseCase) checkDuplicate(ctx context.Context, userID string, items []PlaceOrderItem) error {
	since := uc.now().Add(-uc.window)
	recent, err := uc.orderRepo.ListByUserSince(ctx, userID, since)
	if err != nil {
		return err
	}

	lines := make([]order.Line, len(items))
	for i, it := range items {
		lines[i] = order.Line{BookID: it.BookID, Quantity: it.Quantity}
	}
	if dup := order.FindDuplicate(recent, lines); dup != nil {
		logger.Ctx(ctx).Warn().
			Str("user_id", userID).
			Str("previous_order_id", dup.ID).
			Msg("重复下单被拒绝")
		return order.ErrDuplicateOrder
	}
	return nil
}

// placeInTx 库存事务
// 同一本书出现多次时合并数量；按图书ID升序加锁，避免两个订单交叉加锁造成死锁
func (uc *PlaceOrderUseCase) placeInTx(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error) {
	need := make(map[string]int, len(cmd.Items))
	for _, it := range cmd.Items {
		need[it.BookID] += it.Quantity
	}
	bookIDs := make([]string, 0, len(need))
	for id := range need {
		bookIDs = append(bookIDs, id)
	}
	sort.Strings(bookIDs)

	var placed *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		books := make(map[string]*book.Book, len(bookIDs))
		for _, id := range bookIDs {
			b, err := uc.bookRepo.LockByID(txCtx, id)
			if err != nil {
				return err
			}
			if !b.CanFulfil(need[id]) {
				return book.InsufficientStock(id, b.Stock)
			}
			books[id] = b
		}

		now := uc.now()
		o := uc.buildOrder(txCtx, cmd, books, now)
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}

		for _, id := range bookIDs {
			if err := uc.bookRepo.UpdateStock(txCtx, id, -need[id]); err != nil {
				return err
			}
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (uc *PlaceOrderUseCase) buildOrder(ctx context.Context, cmd PlaceOrderCommand, books map[string]*book.Book, now time.Time) *order.Order {
	items := make([]order.Item, len(cmd.Items))
	for i, it := range cmd.Items {
		b := books[it.BookID]
		items[i] = order.Item{
			BookID:   it.BookID,
			Title:    firstNonEmpty(it.Title, b.Title),
			Author:   firstNonEmpty(it.Author, b.Author),
			Price:    it.Price,
			Quantity: it.Quantity,
			ImageURL: firstNonEmpty(it.ImageURL, b.ImageURL),
		}
	}

	quote := uc.pricing.Quote(items)
	total := quote.Total
	if cmd.Total != nil {
		total = *cmd.Total
		if total != quote.Total {
			logger.Ctx(ctx).Warn().
				Int64("submitted", total).
				Int64("quoted", quote.Total).
				Str("user_id", cmd.UserID).
				Msg("提交的订单金额与报价不一致")
		}
	}

	return &order.Order{
		ID:            uuid.NewString(),
		OrderNo:       order.GenerateOrderNo(now),
		UserID:        cmd.UserID,
		Items:         items,
		Subtotal:      quote.Subtotal,
		CourierCharge: quote.CourierCharge,
		CODFee:        quote.CODFee,
		Total:         total,
		Shipping:      cmd.Shipping,
		Status:        order.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// afterPlaced 提交后的收尾工作，失败只记日志，不影响下单结果
func (uc *PlaceOrderUseCase) afterPlaced(ctx context.Context, o *order.Order) {
	log := logger.Ctx(ctx)
	if err := uc.cartRepo.Clear(ctx, o.UserID); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("清空购物车失败")
	}
	if err := uc.publisher.Publish(ctx, order.EventPlaced, order.NewPlacedEvent(o)); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("发布下单事件失败")
	}
	log.Info().
		Str("order_id", o.ID).
		Str("order_no", o.OrderNo).
		Int64("total", o.Total).
		Msg("下单成功")
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, order.ErrDuplicateOrder):
		return metrics.ReasonDuplicate
	case errors.Is(err, book.ErrBookNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, book.ErrInsufficientStock):
		return metrics.ReasonStock
	case errors.Is(err, apperrors.ErrTransactionConflict):
		return metrics.ReasonConflict
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code < 50000 {
		return metrics.ReasonInvalid
	}
	return metrics.ReasonInfra
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
