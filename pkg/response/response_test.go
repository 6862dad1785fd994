package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(t *testing.T, fn func(c *gin.Context)) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	body := record(t, func(c *gin.Context) { Success(c, gin.H{"id": "o-1"}) })
	assert.EqualValues(t, 0, body["code"])
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, "o-1", body["data"].(map[string]interface{})["id"])
}

func TestError_AppErrorWithDetails(t *testing.T) {
	err := apperrors.ErrInsufficientStock.WithDetails(map[string]interface{}{"book_id": "b-1", "available": 2})
	body := record(t, func(c *gin.Context) { Error(c, err) })

	assert.EqualValues(t, apperrors.ErrCodeInsufficientStock, body["code"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "b-1", data["book_id"])
	assert.EqualValues(t, 2, data["available"])
}

func TestError_PlainErrorIsHidden(t *testing.T) {
	body := record(t, func(c *gin.Context) { Error(c, errors.New("dial tcp: refused")) })

	assert.EqualValues(t, apperrors.ErrCodeInternal, body["code"])
	assert.Equal(t, "系统内部错误", body["message"])
	assert.NotContains(t, body, "data")
}

func TestBindError(t *testing.T) {
	body := record(t, func(c *gin.Context) { BindError(c, errors.New("items为必填")) })
	assert.EqualValues(t, apperrors.ErrCodeInvalidParams, body["code"])
	assert.Contains(t, body["message"], "items为必填")
}

func TestNewPageData(t *testing.T) {
	p := NewPageData([]int{1, 2}, 41, 2, 20)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPageData(nil, 40, 1, 20)
	assert.Equal(t, 2, p.TotalPages)

	p = NewPageData(nil, 5, 1, 0)
	assert.Equal(t, 0, p.TotalPages)
}
