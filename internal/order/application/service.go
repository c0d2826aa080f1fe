// Package application 实现订单用例编排
package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/idgen"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// CreateOrderCommand 创建订单命令
type CreateOrderCommand struct {
	CustomerName  string
	CustomerPhone string
	Address       string
	Items         domain.OrderItemList
}

// OrderCommandService 订单写入口
type OrderCommandService struct {
	repo     domain.OrderRepository
	notifier domain.Notifier
	idgen    *idgen.Snowflake
	metrics  *metrics.Metrics
}

// NewOrderCommandService 创建订单命令服务
func NewOrderCommandService(repo domain.OrderRepository, notifier domain.Notifier, sf *idgen.Snowflake, m *metrics.Metrics) *OrderCommandService {
	return &OrderCommandService{repo: repo, notifier: notifier, idgen: sf, metrics: m}
}

// CreateOrder 创建待处理订单并发送下单通知
func (s *OrderCommandService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	total := decimal.Zero
	for _, item := range cmd.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	orderNo := fmt.Sprintf("%d", s.idgen.Generate())
	order := domain.NewOrder(orderNo, cmd.CustomerName, cmd.CustomerPhone, cmd.Address, cmd.Items, total)

	if err := s.repo.Create(ctx, order); err != nil {
		logger.Error(ctx, "Failed to persist order", "error", err)
		return nil, err
	}

	// 通知失败只记日志，不回滚订单
	if err := s.notifier.NotifyStatusChange(ctx, order); err != nil {
		logger.Warn(ctx, "Failed to send order notification",
			"order_no", order.OrderNo, "error", err)
	}

	logger.Info(ctx, "Order created", "order_no", order.OrderNo, "total", total)
	return order, nil
}

// UpdateStatus 迁移订单状态并发送状态变更通知。
// 状态落库成功后通知发送失败不回滚，只记日志。
func (s *OrderCommandService) UpdateStatus(ctx context.Context, id uint, target domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}
	if previous == order.Status {
		// 同状态幂等调用，不落库不通知
		return order, nil
	}

	if err := s.repo.Save(ctx, order); err != nil {
		logger.Error(ctx, "Failed to persist order status",
			"order_no", order.OrderNo, "status", target, "error", err)
		return nil, err
	}

	switch order.Status {
	case domain.OrderStatusDispatched:
		s.metrics.OrdersDispatchedTotal.Inc()
	case domain.OrderStatusCancelled:
		s.metrics.OrdersCancelledTotal.Inc()
	}

	if err := s.notifier.NotifyStatusChange(ctx, order); err != nil {
		logger.Warn(ctx, "Failed to send order status notification",
			"order_no", order.OrderNo, "status", order.Status, "error", err)
	}

	logger.Info(ctx, "Order status updated",
		"order_no", order.OrderNo, "from", previous, "to", order.Status)
	return order, nil
}

// OrderQueryService 订单读入口
type OrderQueryService struct {
	repo domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(repo domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo}
}

// GetOrder 按 ID 查询订单
func (s *OrderQueryService) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders 按创建时间倒序返回全部订单
func (s *OrderQueryService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}
