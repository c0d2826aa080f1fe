// Package http 提供订单模块的 HTTP 接口层
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	commands *application.OrderCommandService
	queries  *application.OrderQueryService
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(commands *application.OrderCommandService, queries *application.OrderQueryService) *OrderHandler {
	return &OrderHandler{commands: commands, queries: queries}
}

// RegisterRoutes 注册订单路由
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/status", h.UpdateStatus)
	}
}

type createOrderRequest struct {
	CustomerName  string               `json:"customer_name" binding:"required"`
	CustomerPhone string               `json:"customer_phone" binding:"required"`
	Address       string               `json:"address"`
	Items         domain.OrderItemList `json:"items" binding:"required"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.commands.CreateOrder(c.Request.Context(), application.CreateOrderCommand{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Items:         req.Items,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder 按 ID 查询订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.queries.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders 返回全部订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.queries.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateStatus 迁移订单状态
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.commands.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}
