package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
)

// ProductCache 商品读缓存接口。缓存是尽力而为的：
// 实现方应吞掉并记录缓存故障，不得影响主流程。
type ProductCache interface {
	// GetProduct 读取单个商品缓存，未命中返回 false
	GetProduct(ctx context.Context, id uint) (*domain.Product, bool)
	// SetProduct 写入单个商品缓存
	SetProduct(ctx context.Context, product *domain.Product)
	// GetList 读取商品列表缓存，未命中返回 false
	GetList(ctx context.Context) ([]*domain.Product, bool)
	// SetList 写入商品列表缓存
	SetList(ctx context.Context, products []*domain.Product)
	// Invalidate 失效单个商品及列表缓存，写路径调用
	Invalidate(ctx context.Context, id uint)
}

// NoopProductCache 空缓存实现，用于禁用缓存的部署
type NoopProductCache struct{}

func (NoopProductCache) GetProduct(context.Context, uint) (*domain.Product, bool) { return nil, false }
func (NoopProductCache) SetProduct(context.Context, *domain.Product)              {}
func (NoopProductCache) GetList(context.Context) ([]*domain.Product, bool)        { return nil, false }
func (NoopProductCache) SetList(context.Context, []*domain.Product)               {}
func (NoopProductCache) Invalidate(context.Context, uint)                         {}
