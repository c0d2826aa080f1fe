package domain

import "errors"

// 商品管线的业务错误，接口层据此映射 HTTP 状态码
var (
	// ErrInvalidCategory 分类字段含有非整数值
	ErrInvalidCategory = errors.New("invalid category value: all values must be integers")
	// ErrNoFilesProvided 创建商品时未附带任何图片
	ErrNoFilesProvided = errors.New("no files were uploaded")
	// ErrAllUploadsFailed 所有图片上传均失败
	ErrAllUploadsFailed = errors.New("all image uploads failed")
	// ErrAssetCleanupFailed 清理阶段有图片删除失败，更新请求中止
	ErrAssetCleanupFailed = errors.New("failed to remove unused images")
	// ErrNewUploadFailed 更新请求的新图片上传失败（清理阶段已提交）
	ErrNewUploadFailed = errors.New("failed to upload new images")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
)
