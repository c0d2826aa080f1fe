// Package domain 包含订单领域模型
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatusTransition 非法的状态迁移
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrEmptyOrder 订单不含任何条目
	ErrEmptyOrder = errors.New("order must contain at least one item")
)

// OrderStatus 订单状态
type OrderStatus string

const (
	// OrderStatusPending 待处理
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusDispatched 已发货（终态）
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	// OrderStatusCancelled 已取消（终态）
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid 状态值是否合法
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDispatched, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal 是否为终态
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDispatched || s == OrderStatusCancelled
}

// Order 订单实体
type Order struct {
	gorm.Model
	// 订单号（雪花 ID）
	OrderNo string `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	// 客户姓名
	CustomerName string `gorm:"column:customer_name;type:varchar(100);not null" json:"customer_name"`
	// 客户手机号，用于发送通知
	CustomerPhone string `gorm:"column:customer_phone;type:varchar(32);not null" json:"customer_phone"`
	// 收货地址
	Address string `gorm:"column:address;type:text" json:"address"`
	// 订单条目
	Items OrderItemList `gorm:"column:items;type:text;not null" json:"items"`
	// 订单总金额
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(20,2);not null" json:"total_amount"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(16);index;not null;default:'PENDING'" json:"status"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// NewOrder 创建待处理订单
func NewOrder(orderNo, customerName, customerPhone, address string, items OrderItemList, totalAmount decimal.Decimal) *Order {
	return &Order{
		OrderNo:       orderNo,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Address:       address,
		Items:         items,
		TotalAmount:   totalAmount,
		Status:        OrderStatusPending,
	}
}

// TransitionTo 迁移订单状态。只允许从 PENDING 进入终态，
// 终态之间及回退迁移一律拒绝；同状态迁移为幂等空操作。
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, target)
	}
	if o.Status == target {
		return nil
	}
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidStatusTransition, o.Status)
	}
	if target == OrderStatusPending {
		return fmt.Errorf("%w: cannot return to %s", ErrInvalidStatusTransition, target)
	}
	o.Status = target
	return nil
}

// OrderItem 订单条目
type OrderItem struct {
	// 商品 ID
	ProductID uint `json:"product_id"`
	// 商品名称快照
	Name string `json:"name"`
	// 购买数量
	Quantity int `json:"quantity"`
	// 下单时单价快照
	Price decimal.Decimal `json:"price"`
	// 尺码
	Size string `json:"size,omitempty"`
}

// OrderItemList 订单条目列表，序列化为 JSON 存储
type OrderItemList []OrderItem

// Value 实现 driver.Valuer
func (l OrderItemList) Value() (driver.Value, error) {
	if l == nil {
		l = OrderItemList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *OrderItemList) Scan(value interface{}) error {
	if value == nil {
		*l = OrderItemList{}
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into OrderItemList", value)
		}
		data = []byte(s)
	}
	if len(data) == 0 {
		*l = OrderItemList{}
		return nil
	}
	return json.Unmarshal(data, l)
}
