package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diamondnova-backend/internal/domains/notification/model"
	"diamondnova-backend/internal/domains/notification/service"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// NotificationHandler xử lý HTTP requests cho inbox, announcements, banners
type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ========================================
// INBOX
// ========================================

// ListMine xử lý GET /users/me/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	unreadOnly := c.Query("unread") == "true"
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.service.ListMine(c.Request.Context(), accountID, unreadOnly, page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, notifications, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// CountUnread xử lý GET /users/me/notifications/unread-count
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	count, err := h.service.CountUnread(c.Request.Context(), accountID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead xử lý PUT /users/me/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, accountID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead xử lý PUT /users/me/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), accountID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// ========================================
// PUBLIC: ANNOUNCEMENTS + BANNERS
// ========================================

// ListAnnouncements xử lý GET /announcements - chỉ các thông báo active
func (h *NotificationHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.service.ListAnnouncements(c.Request.Context(), true)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, announcements)
}

// ListBanners xử lý GET /banners?position=home_top
func (h *NotificationHandler) ListBanners(c *gin.Context) {
	banners, err := h.service.ListBanners(c.Request.Context(), c.Query("position"), true)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, banners)
}

// ========================================
// ADMIN: ANNOUNCEMENTS
// ========================================

// AdminListAnnouncements xử lý GET /admin/announcements - gồm cả inactive
func (h *NotificationHandler) AdminListAnnouncements(c *gin.Context) {
	announcements, err := h.service.ListAnnouncements(c.Request.Context(), false)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, announcements)
}

// CreateAnnouncement xử lý POST /admin/announcements
func (h *NotificationHandler) CreateAnnouncement(c *gin.Context) {
	var req model.UpsertAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	a, err := h.service.CreateAnnouncement(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, a)
}

// UpdateAnnouncement xử lý PUT /admin/announcements/:id
func (h *NotificationHandler) UpdateAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var req model.UpsertAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	a, err := h.service.UpdateAnnouncement(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, a)
}

// DeleteAnnouncement xử lý DELETE /admin/announcements/:id
func (h *NotificationHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	if err := h.service.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ========================================
// ADMIN: AD BANNERS
// ========================================

// AdminListBanners xử lý GET /admin/banners
func (h *NotificationHandler) AdminListBanners(c *gin.Context) {
	banners, err := h.service.ListBanners(c.Request.Context(), c.Query("position"), false)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, banners)
}

// CreateBanner xử lý POST /admin/banners
func (h *NotificationHandler) CreateBanner(c *gin.Context) {
	var req model.UpsertBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	b, err := h.service.CreateBanner(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// UpdateBanner xử lý PUT /admin/banners/:id
func (h *NotificationHandler) UpdateBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var req model.UpsertBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	b, err := h.service.UpdateBanner(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// DeleteBanner xử lý DELETE /admin/banners/:id
func (h *NotificationHandler) DeleteBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	if err := h.service.DeleteBanner(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *NotificationHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrNotificationNotFound):
		response.NotFound(c, "Thông báo không tồn tại")
	case errors.Is(err, model.ErrAnnouncementNotFound):
		response.NotFound(c, "Thông báo hệ thống không tồn tại")
	case errors.Is(err, model.ErrBannerNotFound):
		response.NotFound(c, "Banner không tồn tại")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
