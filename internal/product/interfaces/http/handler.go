// Package http 提供商品模块的 HTTP 接口层
package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/product/application"
	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductHandler 商品 HTTP 处理器
type ProductHandler struct {
	commands *application.ProductCommandService
	queries  *application.ProductQueryService
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(commands *application.ProductCommandService, queries *application.ProductQueryService) *ProductHandler {
	return &ProductHandler{commands: commands, queries: queries}
}

// RegisterRoutes 注册商品路由
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// CreateProduct 创建商品（multipart 表单，images 为文件字段）
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	uploads, err := readUploads(form.File["images"])
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to read uploaded files", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded files"})
		return
	}

	cmd := application.CreateProductCommand{
		Name:          c.PostForm("name"),
		Description:   c.PostForm("description"),
		OriginalPrice: parseDecimal(c.PostForm("originalprice")),
		Price:         parseDecimal(c.PostForm("price")),
		CategoryRaw:   c.PostForm("category"),
		Stock:         parseInt(c.PostForm("stock")),
		Brand:         c.PostForm("brand"),
		Sizes:         parseStringArray(c.PostForm("sizes")),
		Uploads:       uploads,
	}

	result, err := h.commands.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"message": "Product created successfully",
		"product": result.Product,
	}
	if result.FailedUploads > 0 {
		resp["failed_uploads"] = result.FailedUploads
	}
	c.JSON(http.StatusCreated, resp)
}

// GetProduct 按 ID 查询商品
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.queries.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListProducts 返回全部商品
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.queries.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// UpdateProduct 更新商品。sentImages 字段声明保留的现有图片 public_id 集合，
// 未声明的现有图片将从远程存储删除；images 文件字段为新增图片。
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	uploads, err := readUploads(form.File["images"])
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to read uploaded files", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded files"})
		return
	}

	cmd := application.UpdateProductCommand{
		ProductID:       id,
		Name:            c.PostForm("name"),
		Description:     c.PostForm("description"),
		OriginalPrice:   parseDecimal(c.PostForm("originalprice")),
		Price:           parseDecimal(c.PostForm("price")),
		CategoryRaw:     c.PostForm("category"),
		Stock:           parseInt(c.PostForm("stock")),
		Brand:           c.PostForm("brand"),
		Sizes:           parseStringArray(c.PostForm("sizes")),
		RetainPublicIDs: parseRetainedIDs(c.PostForm("sentImages")),
		Uploads:         uploads,
	}

	product, err := h.commands.UpdateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct 软删除商品
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.commands.DeactivateProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated successfully"})
}

// writeError 把领域错误映射为 HTTP 状态码
func (h *ProductHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrNoFilesProvided),
		errors.Is(err, domain.ErrAllUploadsFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAssetCleanupFailed),
		errors.Is(err, domain.ErrNewUploadFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return uint(id), true
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// parseStringArray 解析 JSON 数组字符串，非法输入回退为单元素或空
func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{raw}
	}
	return values
}

// parseRetainedIDs 解析 sentImages 字段。接受两种形态：
// JSON 数组的 public_id 字符串，或 JSON 数组的 {public_id} 对象。
func parseRetainedIDs(raw string) []domain.PublicID {
	if raw == "" {
		return nil
	}

	var ids []domain.PublicID
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids
	}

	var objects []struct {
		PublicID domain.PublicID `json:"public_id"`
	}
	if err := json.Unmarshal([]byte(raw), &objects); err == nil {
		ids = make([]domain.PublicID, 0, len(objects))
		for _, o := range objects {
			ids = append(ids, o.PublicID)
		}
		return ids
	}
	return nil
}

// readUploads 把 multipart 文件读入内存
func readUploads(files []*multipart.FileHeader) ([]domain.ImageUpload, error) {
	uploads := make([]domain.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, domain.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}
