// Package media 图片上传用例
package media

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/xiebiao/bookworld/internal/infrastructure/media"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// UploadUseCase 上传图书封面等图片
// 原图存 <folder>/<uuid><ext>，缩略图存 <folder>/thumbs/<uuid>.jpg
type UploadUseCase struct {
	storage   media.ObjectStorage
	processor *media.ImageProcessor
	folder    string
}

// NewUploadUseCase 创建上传用例
func NewUploadUseCase(storage media.ObjectStorage, processor *media.ImageProcessor, folder string) *UploadUseCase {
	if folder == "" {
		folder = "bookshop"
	}
	return &UploadUseCase{storage: storage, processor: processor, folder: strings.Trim(folder, "/")}
}

// UploadResult 上传结果
type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Key          string `json:"key"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Execute 校验并上传
func (uc *UploadUseCase) Execute(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	info, err := uc.processor.Validate(filename, data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := path.Join(uc.folder, id+info.Ext)
	url, err := uc.storage.Put(ctx, key, data, info.ContentType)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{URL: url, Key: key, Width: info.Width, Height: info.Height}

	// 缩略图失败不影响原图上传
	thumb, err := uc.processor.Thumbnail(data)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("生成缩略图失败")
		return result, nil
	}
	thumbKey := path.Join(uc.folder, "thumbs", id+".jpg")
	thumbURL, err := uc.storage.Put(ctx, thumbKey, thumb, "image/jpeg")
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", thumbKey).Msg("上传缩略图失败")
		return result, nil
	}
	result.ThumbnailURL = thumbURL

	logger.Ctx(ctx).Info().Str("key", key).Int("bytes", len(data)).Msg("图片已上传")
	return result, nil
}
