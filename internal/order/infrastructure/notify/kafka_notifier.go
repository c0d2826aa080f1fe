// Package notify 提供订单通知的 Kafka 实现
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

// NotificationCommand 发往通知服务的消息指令
type NotificationCommand struct {
	// Target 接收方（客户手机号）
	Target string `json:"target"`
	// Subject 通知主题
	Subject string `json:"subject"`
	// Content 通知内容
	Content string `json:"content"`
	// OrderNo 关联订单号
	OrderNo string `json:"order_no"`
	// Status 通知时的订单状态
	Status string `json:"status"`
	// Timestamp 产生时间
	Timestamp time.Time `json:"timestamp"`
}

// KafkaNotifier 把订单状态变更发布到 Kafka，由下游通知服务投递给客户
type KafkaNotifier struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaNotifier 创建 Kafka 通知器实例
func NewKafkaNotifier(producer *mq.KafkaProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// NotifyStatusChange 发布订单状态变更通知，以客户手机号为分区键保证同客户消息有序
func (n *KafkaNotifier) NotifyStatusChange(ctx context.Context, order *domain.Order) error {
	cmd := NotificationCommand{
		Target:    order.CustomerPhone,
		Subject:   "Order update",
		Content:   n.renderContent(order),
		OrderNo:   order.OrderNo,
		Status:    string(order.Status),
		Timestamp: time.Now(),
	}
	return n.producer.SendMessage(ctx, n.topic, order.CustomerPhone, cmd)
}

func (n *KafkaNotifier) renderContent(order *domain.Order) string {
	switch order.Status {
	case domain.OrderStatusPending:
		return fmt.Sprintf("Hi %s, we received your order %s. Total: %s.",
			order.CustomerName, order.OrderNo, order.TotalAmount.StringFixed(2))
	case domain.OrderStatusDispatched:
		return fmt.Sprintf("Hi %s, your order %s has been dispatched.",
			order.CustomerName, order.OrderNo)
	case domain.OrderStatusCancelled:
		return fmt.Sprintf("Hi %s, your order %s has been cancelled.",
			order.CustomerName, order.OrderNo)
	default:
		return fmt.Sprintf("Hi %s, your order %s status is now %s.",
			order.CustomerName, order.OrderNo, order.Status)
	}
}
