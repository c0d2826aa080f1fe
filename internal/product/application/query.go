package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductQueryService 商品读入口，带短 TTL 缓存
type ProductQueryService struct {
	repo  domain.ProductRepository
	cache ProductCache
}

// NewProductQueryService 创建商品查询服务
func NewProductQueryService(repo domain.ProductRepository, cache ProductCache) *ProductQueryService {
	if cache == nil {
		cache = NoopProductCache{}
	}
	return &ProductQueryService{repo: repo, cache: cache}
}

// GetProduct 按 ID 查询商品，优先走缓存
func (s *ProductQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if product, ok := s.cache.GetProduct(ctx, id); ok {
		return product, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetProduct(ctx, product)
	return product, nil
}

// ListProducts 按创建时间倒序返回全部商品，优先走缓存
func (s *ProductQueryService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if products, ok := s.cache.GetList(ctx); ok {
		return products, nil
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list products", "error", err)
		return nil, err
	}

	s.cache.SetList(ctx, products)
	return products, nil
}
