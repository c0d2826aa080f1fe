// Package mysql 提供商品仓储的 GORM 实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
)

// ProductRepository 商品仓储 GORM 实现
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create 插入新商品
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID 按 ID 查询商品
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List 按创建时间倒序返回全部商品
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateFields 按 ID 做字段级更新并返回更新后的商品。
// 并发更新采用后写覆盖，不做版本校验。
func (r *ProductRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*domain.Product, error) {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// 可能与硬删除并发，按不存在处理
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domain.ErrProductNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Save 保存整个商品实体
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
