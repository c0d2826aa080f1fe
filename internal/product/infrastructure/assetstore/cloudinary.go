// Package assetstore 提供基于 Cloudinary HTTP API 的远程图片存储实现
package assetstore

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wyfcoding/ecommerce/internal/product/domain"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// CloudinaryStore Cloudinary 图片存储实现。
// 每次远程调用由 http.Client 超时约束，单张图片独立成功或失败。
type CloudinaryStore struct {
	cloudName    string
	apiKey       string
	apiSecret    string
	uploadFolder string
	baseURL      string
	client       *http.Client
}

// NewCloudinaryStore 创建 Cloudinary 存储实例
func NewCloudinaryStore(cfg config.CloudinaryConfig) *CloudinaryStore {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CloudinaryStore{
		cloudName:    cfg.CloudName,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		uploadFolder: cfg.UploadFolder,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		client:       &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload 上传一张图片，返回存储分配的 public_id 与展示地址
func (s *CloudinaryStore) Upload(ctx context.Context, upload domain.ImageUpload) (domain.Image, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(upload.Data))

	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}
	if s.uploadFolder != "" {
		params["folder"] = s.uploadFolder
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("file", dataURI)
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", s.baseURL, s.cloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		return domain.Image{}, fmt.Errorf("cloudinary upload: %w", err)
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Image{}, fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	if resp.PublicID == "" {
		return domain.Image{}, fmt.Errorf("cloudinary upload: response missing public_id")
	}

	imageURL := resp.SecureURL
	if imageURL == "" {
		imageURL = resp.URL
	}

	logger.Debug(ctx, "Image uploaded", "public_id", resp.PublicID, "filename", upload.Filename)
	return domain.Image{URL: imageURL, PublicID: domain.PublicID(resp.PublicID)}, nil
}

// Delete 按 public_id 删除图片。远端返回 "not found" 视为删除成功（幂等）。
func (s *CloudinaryStore) Delete(ctx context.Context, publicID domain.PublicID) error {
	params := map[string]string{
		"public_id": string(publicID),
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", s.baseURL, s.cloudName)
	body, err := s.post(ctx, endpoint, form)
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}

	var resp destroyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("cloudinary destroy: decode response: %w", err)
	}
	switch resp.Result {
	case "ok":
		return nil
	case "not found":
		logger.Warn(ctx, "Image already absent in asset store", "public_id", publicID)
		return nil
	default:
		return fmt.Errorf("cloudinary destroy: unexpected result %q", resp.Result)
	}
}

func (s *CloudinaryStore) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

// sign 按 Cloudinary 规则生成请求签名：
// 参数按键名升序拼为 query 串，追加 api_secret 后取 SHA1。
func (s *CloudinaryStore) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	payload := strings.Join(pairs, "&") + s.apiSecret

	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
