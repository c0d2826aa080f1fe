package application

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name          string
	Description   string
	OriginalPrice decimal.Decimal
	Price         decimal.Decimal
	// CategoryRaw 逗号分隔的分类字符串，如 "1,2,3"
	CategoryRaw string
	Stock       int
	Brand       string
	Sizes       []string
	// Uploads 附带的原始图片文件
	Uploads []domain.ImageUpload
}

// CreateProductResult 创建商品结果。
// FailedUploads 大于零表示部分图片上传失败、已被丢弃（部分成功策略），调用方应当感知。
type CreateProductResult struct {
	Product       *domain.Product
	FailedUploads int
}

// UpdateProductCommand 更新商品命令
type UpdateProductCommand struct {
	ProductID     uint
	Name          string
	Description   string
	OriginalPrice decimal.Decimal
	Price         decimal.Decimal
	CategoryRaw   string
	Stock         int
	Brand         string
	Sizes         []string
	// RetainPublicIDs 客户端声明保留的现有图片
	RetainPublicIDs []domain.PublicID
	// Uploads 新增的原始图片文件
	Uploads []domain.ImageUpload
}
