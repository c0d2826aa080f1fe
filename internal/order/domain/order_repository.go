package domain

import "context"

// OrderRepository 订单仓储接口。
// 不存在的订单统一返回 ErrOrderNotFound。
type OrderRepository interface {
	// Create 插入新订单
	Create(ctx context.Context, order *Order) error
	// GetByID 按 ID 查询订单
	GetByID(ctx context.Context, id uint) (*Order, error)
	// List 按创建时间倒序返回全部订单
	List(ctx context.Context) ([]*Order, error)
	// Save 保存订单实体
	Save(ctx context.Context, order *Order) error
}

// Notifier 客户通知接口。通知是尽力而为的旁路：
// 发送失败不应导致订单状态回滚。
type Notifier interface {
	// NotifyStatusChange 发送订单状态变更通知
	NotifyStatusChange(ctx context.Context, order *Order) error
}
