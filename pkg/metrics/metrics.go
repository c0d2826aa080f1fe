// Package metrics 提供 Prometheus helper，包含服务常用 counter/gauge/histogram
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 商品创建计数
	ProductsCreatedTotal prometheus.Counter
	// 商品更新计数
	ProductsUpdatedTotal prometheus.Counter

	// 图片上传计数
	ImageUploadsTotal prometheus.Counter
	// 图片上传失败计数
	ImageUploadFailuresTotal prometheus.Counter
	// 图片删除计数
	ImageDeletesTotal prometheus.Counter
	// 图片上传耗时
	ImageUploadDuration prometheus.Histogram

	// 订单发货计数
	OrdersDispatchedTotal prometheus.Counter
	// 订单取消计数
	OrdersCancelledTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ProductsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "products_created_total",
			Help:      "Total products created",
		}),
		ProductsUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "products_updated_total",
			Help:      "Total products updated",
		}),

		ImageUploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "image_uploads_total",
			Help:      "Total images uploaded to the asset store",
		}),
		ImageUploadFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "image_upload_failures_total",
			Help:      "Total failed image uploads",
		}),
		ImageDeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "image_deletes_total",
			Help:      "Total images deleted from the asset store",
		}),
		ImageUploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "image_upload_duration_seconds",
			Help:      "Image upload duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		OrdersDispatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "orders_dispatched_total",
			Help:      "Total orders dispatched",
		}),
		OrdersCancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: serviceName,
			Name:      "orders_cancelled_total",
			Help:      "Total orders cancelled",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProductsCreatedTotal,
		m.ProductsUpdatedTotal,
		m.ImageUploadsTotal,
		m.ImageUploadFailuresTotal,
		m.ImageDeletesTotal,
		m.ImageUploadDuration,
		m.OrdersDispatchedTotal,
		m.OrdersCancelledTotal,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// StartHTTPServer 启动 Prometheus 指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Metrics HTTP server error", "error", err)
		}
	}()

	logger.Info(context.Background(), "Metrics HTTP server started", "addr", addr, "path", path)
	return nil
}
