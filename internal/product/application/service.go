// Package application 实现商品资产协调流水线：
// 上传/删除并发扇出，创建路径允许部分成功，更新路径先删后传、新图全有或全无。
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// ProductCommandService 商品写入口，编排图片存储与数据库的两阶段协调。
// 不使用事务协调器：远程删除成功后即便后续步骤失败也不做补偿。
type ProductCommandService struct {
	repo    domain.ProductRepository
	assets  domain.AssetStore
	cache   ProductCache
	metrics *metrics.Metrics
}

// NewProductCommandService 创建商品命令服务
func NewProductCommandService(repo domain.ProductRepository, assets domain.AssetStore, cache ProductCache, m *metrics.Metrics) *ProductCommandService {
	if cache == nil {
		cache = NoopProductCache{}
	}
	return &ProductCommandService{
		repo:    repo,
		assets:  assets,
		cache:   cache,
		metrics: m,
	}
}

// CreateProduct 创建商品。图片并发上传，允许部分失败：
// 只要至少一张成功就落库，失败数随结果返回；全部失败则拒绝创建。
func (s *ProductCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*CreateProductResult, error) {
	category, err := domain.ParseCategory(cmd.CategoryRaw)
	if err != nil {
		return nil, err
	}
	if len(cmd.Uploads) == 0 {
		return nil, domain.ErrNoFilesProvided
	}

	images, failures := s.uploadAll(ctx, cmd.Uploads)
	if len(images) == 0 {
		logger.Error(ctx, "All image uploads failed", "attempted", len(cmd.Uploads))
		return nil, domain.ErrAllUploadsFailed
	}
	for _, uploadErr := range failures {
		logger.Warn(ctx, "Image upload failed, dropping from product", "error", uploadErr)
	}

	product := domain.NewProduct(cmd.Name, cmd.Description, cmd.OriginalPrice, cmd.Price,
		category, cmd.Stock, cmd.Brand, domain.StringList(cmd.Sizes), images)
	if err := s.repo.Create(ctx, product); err != nil {
		logger.Error(ctx, "Failed to persist product", "error", err)
		return nil, err
	}

	s.metrics.ProductsCreatedTotal.Inc()
	s.cache.Invalidate(ctx, product.ID)
	logger.Info(ctx, "Product created", "product_id", product.ID,
		"images", len(images), "failed_uploads", len(failures))

	return &CreateProductResult{Product: product, FailedUploads: len(failures)}, nil
}

// UpdateProduct 更新商品。图片协调分两个严格有序的阶段：
// 先并发删除客户端未保留的现有图片（任一失败即中止，不碰新图），
// 再并发上传新图（全有或全无），最后合并保留图与新图一次性落库。
func (s *ProductCommandService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	category, err := domain.ParseCategory(cmd.CategoryRaw)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	retained, removed := domain.PartitionImages(existing.Images, cmd.RetainPublicIDs)

	if err := s.deleteAll(ctx, removed); err != nil {
		logger.Error(ctx, "Failed to remove unused images",
			"product_id", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAssetCleanupFailed, err)
	}

	uploaded, failures := s.uploadAll(ctx, cmd.Uploads)
	if len(failures) > 0 {
		// 已上传成功的新图此时成为孤儿，只记录不回滚
		logger.Error(ctx, "Failed to upload new images",
			"product_id", cmd.ProductID, "orphaned", uploaded.PublicIDs(), "failed", len(failures))
		return nil, fmt.Errorf("%w: %v", domain.ErrNewUploadFailed, failures[0])
	}

	images := make(domain.ImageList, 0, len(retained)+len(uploaded))
	images = append(images, retained...)
	images = append(images, uploaded...)

	fields := map[string]interface{}{
		"name":           cmd.Name,
		"description":    cmd.Description,
		"original_price": cmd.OriginalPrice,
		"price":          cmd.Price,
		"category":       category,
		"stock":          cmd.Stock,
		"brand":          cmd.Brand,
		"sizes":          domain.StringList(cmd.Sizes),
		"images":         images,
	}
	updated, err := s.repo.UpdateFields(ctx, cmd.ProductID, fields)
	if err != nil {
		logger.Error(ctx, "Failed to persist product update",
			"product_id", cmd.ProductID, "error", err)
		return nil, err
	}

	s.metrics.ProductsUpdatedTotal.Inc()
	s.cache.Invalidate(ctx, cmd.ProductID)
	logger.Info(ctx, "Product updated", "product_id", cmd.ProductID,
		"retained", len(retained), "removed", len(removed), "uploaded", len(uploaded))

	return updated, nil
}

// DeactivateProduct 软删除商品：仅翻转状态，图片与历史数据全部保留。重复调用幂等。
func (s *ProductCommandService) DeactivateProduct(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	product.Deactivate()
	if err := s.repo.Save(ctx, product); err != nil {
		logger.Error(ctx, "Failed to deactivate product", "product_id", id, "error", err)
		return err
	}

	s.cache.Invalidate(ctx, id)
	logger.Info(ctx, "Product deactivated", "product_id", id)
	return nil
}

// uploadAll 并发上传全部图片，逐条捕获结果。
// 返回成功的图片（保持入参顺序）和失败的错误集合，不做整体短路。
func (s *ProductCommandService) uploadAll(ctx context.Context, uploads []domain.ImageUpload) (domain.ImageList, []error) {
	if len(uploads) == 0 {
		return domain.ImageList{}, nil
	}

	type outcome struct {
		image domain.Image
		err   error
	}
	outcomes := make([]outcome, len(uploads))

	var wg sync.WaitGroup
	for i, upload := range uploads {
		wg.Add(1)
		go func(i int, upload domain.ImageUpload) {
			defer wg.Done()
			start := time.Now()
			image, err := s.assets.Upload(ctx, upload)
			s.metrics.ImageUploadDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				s.metrics.ImageUploadFailuresTotal.Inc()
				outcomes[i] = outcome{err: fmt.Errorf("upload %s: %w", upload.Filename, err)}
				return
			}
			s.metrics.ImageUploadsTotal.Inc()
			outcomes[i] = outcome{image: image}
		}(i, upload)
	}
	wg.Wait()

	succeeded := make(domain.ImageList, 0, len(uploads))
	var failures []error
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		succeeded = append(succeeded, o.image)
	}
	return succeeded, failures
}

// deleteAll 并发删除图片，任一失败即返回错误。
// 删除不存在的 public_id 由存储实现视为成功，因此重试安全。
func (s *ProductCommandService) deleteAll(ctx context.Context, images domain.ImageList) error {
	if len(images) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, img := range images {
		publicID := img.PublicID
		g.Go(func() error {
			if err := s.assets.Delete(ctx, publicID); err != nil {
				return fmt.Errorf("delete %s: %w", publicID, err)
			}
			s.metrics.ImageDeletesTotal.Inc()
			return nil
		})
	}
	return g.Wait()
}
