package domain

import "context"

// ProductRepository 商品仓储接口。
// 不存在的 id 统一返回 ErrProductNotFound。
type ProductRepository interface {
	// Create 插入新商品，回填生成的 ID 和时间戳
	Create(ctx context.Context, product *Product) error
	// GetByID 按 ID 查询商品
	GetByID(ctx context.Context, id uint) (*Product, error)
	// List 按创建时间倒序返回全部商品
	List(ctx context.Context) ([]*Product, error)
	// UpdateFields 按 ID 做字段级更新，返回更新后的商品
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*Product, error)
	// Save 保存整个商品实体（软删除状态翻转使用）
	Save(ctx context.Context, product *Product) error
}
