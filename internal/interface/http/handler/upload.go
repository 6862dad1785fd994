package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	appmedia "github.com/xiebiao/bookworld/internal/application/media"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/response"
)

const uploadField = "image"

// UploadHandler 图片上传
type UploadHandler struct {
	upload  *appmedia.UploadUseCase
	maxSize int64
}

// NewUploadHandler 创建上传处理器，maxSize为单个文件上限（字节）
func NewUploadHandler(upload *appmedia.UploadUseCase, maxSize int64) *UploadHandler {
	return &UploadHandler{upload: upload, maxSize: maxSize}
}

// Upload 上传图片
// @Summary      上传图片
// @Description  支持jpg/jpeg/png/gif，同时生成jpeg缩略图
// @Tags         媒体
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "图片文件"
// @Success      200 {object} response.Response{data=appmedia.UploadResult}
// @Failure      200 {object} response.Response "40903 图片格式不支持"
// @Router       /api/v1/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidImage.WithMessage("请选择要上传的图片"))
		return
	}
	if h.maxSize > 0 && fh.Size > h.maxSize {
		response.Error(c, apperrors.ErrInvalidImage.
			WithMessage("图片过大").
			WithDetails(map[string]interface{}{"max_size": h.maxSize}))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "读取上传文件失败"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "读取上传文件失败"))
		return
	}

	result, err := h.upload.Execute(c.Request.Context(), fh.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
