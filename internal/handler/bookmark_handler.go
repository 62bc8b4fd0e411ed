package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mealmood-server/internal/middleware"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/response"
)

// BookmarkHandler 收藏请求处理器
type BookmarkHandler struct {
	bookmarkService *service.BookmarkService
}

// NewBookmarkHandler 创建 BookmarkHandler 实例
func NewBookmarkHandler(bookmarkService *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// CreateBookmark 新增收藏
// @Router /api/v1/bookmarks [post]
func (h *BookmarkHandler) CreateBookmark(c *gin.Context) {
	var req service.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "이름과 URL 을 입력해 주세요.")
		return
	}

	bookmark, err := h.bookmarkService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		writeServiceError(c, err, "즐겨찾기 추가에 실패했습니다.")
		return
	}
	response.Created(c, bookmark)
}

// ListBookmarks 获取当前用户的收藏
// @Router /api/v1/bookmarks [get]
func (h *BookmarkHandler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.bookmarkService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err, "즐겨찾기 목록을 가져오지 못했습니다.")
		return
	}
	response.Success(c, bookmarks)
}

// UpdateBookmark 修改收藏
// @Router /api/v1/bookmarks/{id} [put]
func (h *BookmarkHandler) UpdateBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		return
	}

	var req service.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "이름과 URL 을 입력해 주세요.")
		return
	}

	bookmark, err := h.bookmarkService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		writeServiceError(c, err, "즐겨찾기 수정에 실패했습니다.")
		return
	}
	response.Success(c, bookmark)
}

// DeleteBookmark 删除收藏
// @Router /api/v1/bookmarks/{id} [delete]
func (h *BookmarkHandler) DeleteBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		return
	}

	if err := h.bookmarkService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		writeServiceError(c, err, "즐겨찾기 삭제에 실패했습니다.")
		return
	}
	response.SuccessWithMessage(c, "즐겨찾기 삭제 성공", nil)
}

func bookmarkID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "잘못된 즐겨찾기 ID 입니다.")
		return 0, false
	}
	return id, true
}
