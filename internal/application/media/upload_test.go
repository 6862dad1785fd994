package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/infrastructure/media"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload(t *testing.T) {
	storage := media.NewMemoryStorage("http://cdn.local/bookworld")
	uc := NewUploadUseCase(storage, media.NewImageProcessor(1<<20, 100), "bookshop")

	result, err := uc.Execute(context.Background(), "cover.png", pngBytes(t, 400, 200))
	require.NoError(t, err)

	assert.Regexp(t, `^bookshop/[0-9a-f-]{36}\.png$`, result.Key)
	assert.Equal(t, "http://cdn.local/bookworld/"+result.Key, result.URL)
	assert.Equal(t, 400, result.Width)

	id := strings.TrimSuffix(strings.TrimPrefix(result.Key, "bookshop/"), ".png")
	assert.Equal(t, "http://cdn.local/bookworld/bookshop/thumbs/"+id+".jpg", result.ThumbnailURL)

	_, ok := storage.Get(result.Key)
	assert.True(t, ok)
	_, ok = storage.Get("bookshop/thumbs/" + id + ".jpg")
	assert.True(t, ok)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	uc := NewUploadUseCase(media.NewMemoryStorage(""), media.NewImageProcessor(0, 0), "")

	_, err := uc.Execute(context.Background(), "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)

	// 扩展名是图片但内容不是
	_, err = uc.Execute(context.Background(), "fake.jpg", []byte("hello"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
}
