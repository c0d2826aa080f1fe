package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PublicID 远程图片存储分配的唯一标识，是删除操作的唯一稳定身份。
// 使用独立类型避免与普通字符串（如 URL）混用。
type PublicID string

// Image 一张托管在远程图片存储中、被商品引用的图片
type Image struct {
	// URL 展示地址，由远程存储派生
	URL string `json:"url"`
	// PublicID 远程存储标识，删除时使用
	PublicID PublicID `json:"public_id"`
}

// ImageList 图片列表，序列化为 JSON 存储
type ImageList []Image

// Value 实现 driver.Valuer
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			data = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into ImageList", value)
		}
	}
	if len(data) == 0 {
		*l = ImageList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// PublicIDs 返回列表中所有图片的 PublicID
func (l ImageList) PublicIDs() []PublicID {
	ids := make([]PublicID, 0, len(l))
	for _, img := range l {
		ids = append(ids, img.PublicID)
	}
	return ids
}

// PartitionImages 按客户端声明保留的 PublicID 集合，把当前图片切分为保留和待删除两部分。
// 纯标识集合运算：retained ∪ removed = current 且 retained ∩ removed = ∅，
// retained 保持 current 中的相对顺序。
func PartitionImages(current ImageList, retain []PublicID) (retained, removed ImageList) {
	retainSet := make(map[PublicID]struct{}, len(retain))
	for _, id := range retain {
		retainSet[id] = struct{}{}
	}

	retained = make(ImageList, 0, len(current))
	removed = make(ImageList, 0)
	for _, img := range current {
		if _, ok := retainSet[img.PublicID]; ok {
			retained = append(retained, img)
		} else {
			removed = append(removed, img)
		}
	}
	return retained, removed
}

// ImageUpload 一次待上传的原始图片数据
type ImageUpload struct {
	// Filename 原始文件名，仅用于日志
	Filename string
	// ContentType MIME 类型
	ContentType string
	// Data 文件内容
	Data []byte
}
