package domain

import "context"

// AssetStore 远程图片存储接口。单张图片的上传/删除各自独立成功或失败，
// 实现方须对每次远程调用施加有界超时。
type AssetStore interface {
	// Upload 上传一张图片，返回存储分配的引用
	Upload(ctx context.Context, upload ImageUpload) (Image, error)
	// Delete 按 PublicID 删除图片。删除不存在的 PublicID 不视为错误（幂等）
	Delete(ctx context.Context, publicID PublicID) error
}
