package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookworld/internal/application/book"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/interface/http/dto"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	publishBook *appbook.PublishBookUseCase
	updateBook  *appbook.UpdateBookUseCase
	deleteBook  *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	publishBook *appbook.PublishBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:   listBooks,
		getBook:     getBook,
		publishBook: publishBook,
		updateBook:  updateBook,
		deleteBook:  deleteBook,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  支持分类、推荐、书名关键词过滤，以及排序和分页
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        category  query string false "分类"
// @Param        featured  query bool   false "是否推荐"
// @Param        keyword   query string false "书名关键词"
// @Param        sort_by   query string false "排序" Enums(created_at:desc, price:asc, price:desc, title:asc)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.BookListItem}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), q.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewBookList(result.List), result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "40402 图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.getBook.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}

// PublishBook 上架图书
// @Summary      上架图书
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "40900 参数错误 / 40004 ISBN已存在"
// @Router       /api/v1/admin/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.publishBook.Execute(c.Request.Context(), req.ToInput(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  只有管理员可以直接修改库存，其他角色提交的库存会被忽略
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string          true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Router       /api/v1/admin/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:         c.Param("id"),
		Input:      req.ToInput(),
		IsAdmin:    middleware.GetRole(c) == user.RoleAdmin,
		OperatorID: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}

// DeleteBook 下架（删除）图书
// @Summary      删除图书
// @Tags         图书管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.deleteBook.Execute(c.Request.Context(), c.Param("id"), middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
