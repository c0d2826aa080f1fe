package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// fakeAssetStore 可编程的图片存储假实现，记录调用顺序用于断言阶段有序
type fakeAssetStore struct {
	mu        sync.Mutex
	uploadErr map[string]error
	deleteErr map[domain.PublicID]error
	events    []string
	seq       int
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{
		uploadErr: map[string]error{},
		deleteErr: map[domain.PublicID]error{},
	}
}

func (f *fakeAssetStore) Upload(_ context.Context, upload domain.ImageUpload) (domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "upload:"+upload.Filename)
	if err := f.uploadErr[upload.Filename]; err != nil {
		return domain.Image{}, err
	}
	f.seq++
	publicID := fmt.Sprintf("shop/%s-%d", upload.Filename, f.seq)
	return domain.Image{
		URL:      "https://cdn.example.com/" + publicID,
		PublicID: domain.PublicID(publicID),
	}, nil
}

func (f *fakeAssetStore) Delete(_ context.Context, publicID domain.PublicID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "delete:"+string(publicID))
	return f.deleteErr[publicID]
}

func (f *fakeAssetStore) deletedIDs() []domain.PublicID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []domain.PublicID
	for _, ev := range f.events {
		if rest, ok := strings.CutPrefix(ev, "delete:"); ok {
			ids = append(ids, domain.PublicID(rest))
		}
	}
	return ids
}

func (f *fakeAssetStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if strings.HasPrefix(ev, "upload:") {
			n++
		}
	}
	return n
}

// fakeProductRepo 内存商品仓储
type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*domain.Product
	updates  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uint]*domain.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	r.updates++
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["images"].(domain.ImageList); ok {
		p.Images = v
	}
	if v, ok := fields["stock"].(int); ok {
		p.Stock = v
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func newTestService(repo *fakeProductRepo, assets *fakeAssetStore) *ProductCommandService {
	return NewProductCommandService(repo, assets, nil, metrics.New("test"))
}

func uploadsOf(names ...string) []domain.ImageUpload {
	uploads := make([]domain.ImageUpload, 0, len(names))
	for _, name := range names {
		uploads = append(uploads, domain.ImageUpload{
			Filename:    name,
			ContentType: "image/jpeg",
			Data:        []byte{0xFF, 0xD8},
		})
	}
	return uploads
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with all uploads succeeding", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)

		result, err := svc.CreateProduct(ctx, CreateProductCommand{
			Name:        "Sneaker",
			CategoryRaw: "1,2",
			Price:       decimal.NewFromInt(99),
			Uploads:     uploadsOf("a.jpg", "b.jpg"),
		})

		require.NoError(t, err)
		assert.Zero(t, result.FailedUploads)
		assert.Len(t, result.Product.Images, 2)
		assert.NotZero(t, result.Product.ID)
		assert.Equal(t, domain.ProductStatusActive, result.Product.Status)

		stored, err := repo.GetByID(ctx, result.Product.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Images, 2)
	})

	t.Run("rejects non-integer category before any upload", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)

		_, err := svc.CreateProduct(ctx, CreateProductCommand{
			CategoryRaw: "1, 2,x",
			Uploads:     uploadsOf("a.jpg"),
		})

		require.ErrorIs(t, err, domain.ErrInvalidCategory)
		assert.Zero(t, assets.uploadCount())
		assert.Empty(t, repo.products)
	})

	t.Run("rejects request without files", func(t *testing.T) {
		repo := newFakeProductRepo()
		svc := newTestService(repo, newFakeAssetStore())

		_, err := svc.CreateProduct(ctx, CreateProductCommand{CategoryRaw: "1"})

		require.ErrorIs(t, err, domain.ErrNoFilesProvided)
		assert.Empty(t, repo.products)
	})

	t.Run("partial upload failure still creates product", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		assets.uploadErr["b.jpg"] = errors.New("network timeout")
		svc := newTestService(repo, assets)

		result, err := svc.CreateProduct(ctx, CreateProductCommand{
			Name:        "Sneaker",
			CategoryRaw: "1",
			Uploads:     uploadsOf("a.jpg", "b.jpg", "c.jpg"),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.FailedUploads)
		assert.Len(t, result.Product.Images, 2)
		for _, img := range result.Product.Images {
			assert.NotContains(t, string(img.PublicID), "b.jpg")
		}
	})

	t.Run("all uploads failing rejects creation", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		assets.uploadErr["a.jpg"] = errors.New("boom")
		assets.uploadErr["b.jpg"] = errors.New("boom")
		svc := newTestService(repo, assets)

		_, err := svc.CreateProduct(ctx, CreateProductCommand{
			CategoryRaw: "1",
			Uploads:     uploadsOf("a.jpg", "b.jpg"),
		})

		require.ErrorIs(t, err, domain.ErrAllUploadsFailed)
		assert.Empty(t, repo.products)
	})
}

func seedProduct(t *testing.T, repo *fakeProductRepo, images domain.ImageList) *domain.Product {
	t.Helper()
	p := domain.NewProduct("Sneaker", "d", decimal.NewFromInt(120), decimal.NewFromInt(99),
		domain.Int64List{1}, 5, "Acme", nil, images)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	existing := domain.ImageList{
		{URL: "u1", PublicID: "shop/old-1"},
		{URL: "u2", PublicID: "shop/old-2"},
		{URL: "u3", PublicID: "shop/old-3"},
	}

	t.Run("merges retained and new images, deletes the rest", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, existing)

		updated, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ProductID:       p.ID,
			Name:            "Sneaker v2",
			CategoryRaw:     "1,2",
			RetainPublicIDs: []domain.PublicID{"shop/old-1", "shop/old-3"},
			Uploads:         uploadsOf("new.jpg"),
		})

		require.NoError(t, err)
		require.Len(t, updated.Images, 3)
		assert.Equal(t, domain.PublicID("shop/old-1"), updated.Images[0].PublicID)
		assert.Equal(t, domain.PublicID("shop/old-3"), updated.Images[1].PublicID)
		assert.Contains(t, string(updated.Images[2].PublicID), "new.jpg")

		assert.ElementsMatch(t, []domain.PublicID{"shop/old-2"}, assets.deletedIDs())
		assert.Equal(t, "Sneaker v2", updated.Name)
	})

	t.Run("unknown product yields not found without asset calls", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)

		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{ProductID: 42, CategoryRaw: "1"})

		require.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Empty(t, assets.events)
	})

	t.Run("delete failure aborts before uploads and persistence", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		assets.deleteErr["shop/old-2"] = errors.New("storage unavailable")
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, existing)

		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ProductID:       p.ID,
			CategoryRaw:     "1",
			RetainPublicIDs: []domain.PublicID{"shop/old-1", "shop/old-3"},
			Uploads:         uploadsOf("new.jpg"),
		})

		require.ErrorIs(t, err, domain.ErrAssetCleanupFailed)
		assert.Zero(t, assets.uploadCount())
		assert.Zero(t, repo.updates)

		stored, getErr := repo.GetByID(ctx, p.ID)
		require.NoError(t, getErr)
		assert.Equal(t, existing, stored.Images)
	})

	t.Run("new upload failure aborts persistence", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		assets.uploadErr["bad.jpg"] = errors.New("boom")
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, existing)

		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ProductID:       p.ID,
			CategoryRaw:     "1",
			RetainPublicIDs: []domain.PublicID{"shop/old-1"},
			Uploads:         uploadsOf("good.jpg", "bad.jpg"),
		})

		require.ErrorIs(t, err, domain.ErrNewUploadFailed)
		assert.Zero(t, repo.updates)
		// 清理阶段已提交，被删除的图片不会恢复
		assert.ElementsMatch(t, []domain.PublicID{"shop/old-2", "shop/old-3"}, assets.deletedIDs())
	})

	t.Run("all deletes resolve before any upload starts", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, existing)

		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ProductID:   p.ID,
			CategoryRaw: "1",
			Uploads:     uploadsOf("n1.jpg", "n2.jpg"),
		})
		require.NoError(t, err)

		firstUpload := -1
		lastDelete := -1
		for i, ev := range assets.events {
			if strings.HasPrefix(ev, "upload:") && firstUpload == -1 {
				firstUpload = i
			}
			if strings.HasPrefix(ev, "delete:") {
				lastDelete = i
			}
		}
		require.NotEqual(t, -1, firstUpload)
		require.NotEqual(t, -1, lastDelete)
		assert.Less(t, lastDelete, firstUpload)
	})

	t.Run("empty retain set with no new uploads clears images", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, existing)

		updated, err := svc.UpdateProduct(ctx, UpdateProductCommand{
			ProductID:   p.ID,
			CategoryRaw: "1",
		})

		require.NoError(t, err)
		assert.Empty(t, updated.Images)
		assert.Len(t, assets.deletedIDs(), 3)
	})
}

func TestDeactivateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("flips status and keeps images", func(t *testing.T) {
		repo := newFakeProductRepo()
		assets := newFakeAssetStore()
		svc := newTestService(repo, assets)
		p := seedProduct(t, repo, domain.ImageList{{URL: "u", PublicID: "shop/a"}})

		require.NoError(t, svc.DeactivateProduct(ctx, p.ID))

		stored, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ProductStatusInactive, stored.Status)
		assert.Len(t, stored.Images, 1)
		assert.Empty(t, assets.events)

		// 重复下架是幂等的
		require.NoError(t, svc.DeactivateProduct(ctx, p.ID))
	})

	t.Run("unknown product yields not found", func(t *testing.T) {
		repo := newFakeProductRepo()
		svc := newTestService(repo, newFakeAssetStore())

		err := svc.DeactivateProduct(ctx, 99)
		require.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
