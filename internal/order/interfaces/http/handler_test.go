package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/idgen"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

type stubOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*domain.Order
}

func newStubOrderRepo() *stubOrderRepo { return &stubOrderRepo{orders: map[uint]*domain.Order{}} }

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

type stubNotifier struct{}

func (stubNotifier) NotifyStatusChange(context.Context, *domain.Order) error { return nil }

func newTestRouter(repo *stubOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	commands := application.NewOrderCommandService(repo, stubNotifier{}, idgen.NewSnowflake(1), metrics.New("test"))
	queries := application.NewOrderQueryService(repo)
	handler := NewOrderHandler(commands, queries)

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestCreateOrderEndpoint(t *testing.T) {
	router := newTestRouter(newStubOrderRepo())

	payload := map[string]interface{}{
		"customer_name":  "Ada",
		"customer_phone": "+15550001111",
		"address":        "1 Main St",
		"items": []map[string]interface{}{
			{"product_id": 1, "name": "Sneaker", "quantity": 2, "price": "99"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Order domain.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.OrderStatusPending, resp.Order.Status)
	assert.True(t, resp.Order.TotalAmount.Equal(decimal.NewFromInt(198)))
	assert.NotEmpty(t, resp.Order.OrderNo)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	repo := newStubOrderRepo()
	router := newTestRouter(repo)

	o := domain.NewOrder("1001", "Ada", "+15550001111", "",
		domain.OrderItemList{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)}},
		decimal.NewFromInt(10))
	require.NoError(t, repo.Create(context.Background(), o))

	post := func(id, status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := post("1", "DISPATCHED")
	assert.Equal(t, http.StatusOK, rec.Code)

	// 终态后再迁移被拒绝
	rec = post("1", "CANCELLED")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post("99", "DISPATCHED")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersEndpoint(t *testing.T) {
	repo := newStubOrderRepo()
	router := newTestRouter(repo)

	o := domain.NewOrder("1001", "Ada", "+15550001111", "", domain.OrderItemList{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(5)}}, decimal.NewFromInt(5))
	require.NoError(t, repo.Create(context.Background(), o))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 1)
}
