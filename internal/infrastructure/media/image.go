package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// 允许的扩展名及对应的解码格式
var allowedFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
}

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// ImageInfo 校验通过的图片
type ImageInfo struct {
	Ext         string
	Format      string
	ContentType string
	Width       int
	Height      int
}

// ImageProcessor 图片校验与缩略图
type ImageProcessor struct {
	MaxSize   int64
	ThumbSize int
}

// NewImageProcessor maxSize为字节数，thumbSize为缩略图最长边像素
func NewImageProcessor(maxSize int64, thumbSize int) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	if thumbSize <= 0 {
		thumbSize = 300
	}
	return &ImageProcessor{MaxSize: maxSize, ThumbSize: thumbSize}
}

// Validate 扩展名和文件头都必须是jpg/jpeg/png/gif，且两者一致
func (p *ImageProcessor) Validate(filename string, data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, apperrors.ErrInvalidImage.WithMessage("图片内容为空")
	}
	if int64(len(data)) > p.MaxSize {
		return nil, apperrors.ErrInvalidImage.WithMessage(
			fmt.Sprintf("图片不能超过%dMB", p.MaxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedFormats[ext]
	if !ok {
		return nil, apperrors.ErrInvalidImage.WithDetails(map[string]interface{}{"ext": ext})
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.WithCode(err, apperrors.ErrCodeInvalidImage, "无法识别的图片")
	}
	if format != want {
		return nil, apperrors.ErrInvalidImage.WithMessage("图片内容与扩展名不一致")
	}

	return &ImageInfo{
		Ext:         ext,
		Format:      format,
		ContentType: contentTypes[format],
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Thumbnail 等比缩放到ThumbSize以内，输出JPEG
func (p *ImageProcessor) Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	thumb := imaging.Fit(img, p.ThumbSize, p.ThumbSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("生成缩略图失败: %w", err)
	}
	return buf.Bytes(), nil
}
