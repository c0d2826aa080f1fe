// Package domain 包含商品目录的领域模型
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus 商品生命周期状态
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product 商品实体。images 字段与远程图片存储保持一致：
// 序列中不应引用已删除的 public_id，成功上传的图片不应缺失（部分失败场景见应用层说明）。
type Product struct {
	gorm.Model
	// 商品名称
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// 商品描述
	Description string `gorm:"column:description;type:text;not null" json:"description"`
	// 原价
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:decimal(20,2);not null" json:"originalprice"`
	// 售价
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	// 分类 ID 集合
	Category Int64List `gorm:"column:category;type:text;not null" json:"category"`
	// 库存
	Stock int `gorm:"column:stock;not null;default:0" json:"stock"`
	// 品牌
	Brand string `gorm:"column:brand;type:varchar(100);not null" json:"brand"`
	// 尺码列表
	Sizes StringList `gorm:"column:sizes;type:text" json:"sizes"`
	// 图片列表
	Images ImageList `gorm:"column:images;type:text" json:"images"`
	// 评价列表
	Reviews ReviewList `gorm:"column:reviews;type:text" json:"reviews"`
	// 评价数
	NumReviews int `gorm:"column:num_reviews;not null;default:0" json:"numReviews"`
	// 累计销售额
	TotalRevenue decimal.Decimal `gorm:"column:total_revenue;type:decimal(20,2);not null;default:0" json:"total_revenue"`
	// 生命周期状态
	Status ProductStatus `gorm:"column:status;type:varchar(16);index;not null;default:'active'" json:"status"`
}

// TableName 指定表名
func (Product) TableName() string { return "products" }

// NewProduct 创建商品实体，默认值在此集中设置：
// 状态 active、空评价、零销售额（时间戳由 GORM 维护）。
func NewProduct(name, description string, originalPrice, price decimal.Decimal, category Int64List, stock int, brand string, sizes StringList, images ImageList) *Product {
	return &Product{
		Name:          name,
		Description:   description,
		OriginalPrice: originalPrice,
		Price:         price,
		Category:      category,
		Stock:         stock,
		Brand:         brand,
		Sizes:         sizes,
		Images:        images,
		Reviews:       ReviewList{},
		NumReviews:    0,
		TotalRevenue:  decimal.Zero,
		Status:        ProductStatusActive,
	}
}

// Deactivate 软删除：状态置为 inactive。对已下架商品重复调用是幂等的。
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
}

// IsActive 商品是否在售
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Review 商品评价
type Review struct {
	// Ratings 评分 0-5
	Ratings float64 `json:"ratings"`
	// Feedback 评价内容
	Feedback string `json:"feedback"`
}

// ReviewList 评价列表，序列化为 JSON 存储
type ReviewList []Review

// Value 实现 driver.Valuer
func (l ReviewList) Value() (driver.Value, error) {
	if l == nil {
		l = ReviewList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *ReviewList) Scan(value interface{}) error {
	return scanJSON(value, l, func() { *l = ReviewList{} })
}

// Int64List 整数列表，序列化为 JSON 存储
type Int64List []int64

// Value 实现 driver.Valuer
func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		l = Int64List{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *Int64List) Scan(value interface{}) error {
	return scanJSON(value, l, func() { *l = Int64List{} })
}

// StringList 字符串列表，序列化为 JSON 存储
type StringList []string

// Value 实现 driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l, func() { *l = StringList{} })
}

func scanJSON(value interface{}, dest interface{}, reset func()) error {
	if value == nil {
		reset()
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T", value)
		}
		data = []byte(s)
	}
	if len(data) == 0 {
		reset()
		return nil
	}
	return json.Unmarshal(data, dest)
}

// ParseCategory 解析逗号分隔的分类字符串为整数集合。
// 任一 token 非法则整体拒绝，不做部分接受。
func ParseCategory(raw string) (Int64List, error) {
	if strings.TrimSpace(raw) == "" {
		return Int64List{}, nil
	}

	tokens := strings.Split(raw, ",")
	categories := make(Int64List, 0, len(tokens))
	for _, token := range tokens {
		n, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil {
			return nil, ErrInvalidCategory
		}
		categories = append(categories, n)
	}
	return categories, nil
}
