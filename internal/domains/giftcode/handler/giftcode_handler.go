package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diamondnova-backend/internal/domains/giftcode/model"
	"diamondnova-backend/internal/domains/giftcode/service"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// GiftcodeHandler xử lý HTTP requests cho giftcode
type GiftcodeHandler struct {
	service service.Service
}

func NewGiftcodeHandler(service service.Service) *GiftcodeHandler {
	return &GiftcodeHandler{service: service}
}

// Redeem xử lý POST /giftcodes/redeem
func (h *GiftcodeHandler) Redeem(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	entry, err := h.service.Redeem(c.Request.Context(), accountID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// Create xử lý POST /admin/giftcodes
func (h *GiftcodeHandler) Create(c *gin.Context) {
	adminID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.CreateGiftcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	gc, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gc)
}

// List xử lý GET /admin/giftcodes
func (h *GiftcodeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	stats, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, stats, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Get xử lý GET /admin/giftcodes/:code
func (h *GiftcodeHandler) Get(c *gin.Context) {
	gc, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gc)
}

// Update xử lý PUT /admin/giftcodes/:code
func (h *GiftcodeHandler) Update(c *gin.Context) {
	var req model.UpdateGiftcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	gc, err := h.service.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gc)
}

// Deactivate xử lý DELETE /admin/giftcodes/:code
// Soft-disable: redemption history phải sống mãi nên không bao giờ
// xóa row giftcode.
func (h *GiftcodeHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"code": c.Param("code"), "active": false})
}

// ListRedemptions xử lý GET /admin/giftcodes/:code/redemptions
func (h *GiftcodeHandler) ListRedemptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	redemptions, total, err := h.service.ListRedemptions(c.Request.Context(), c.Param("code"), page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, redemptions, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *GiftcodeHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrGiftcodeNotFound), errors.Is(err, ledgerModel.ErrCodeNotFound):
		response.NotFound(c, "Giftcode không tồn tại")
	case errors.Is(err, model.ErrGiftcodeExists):
		response.Conflict(c, "Giftcode đã tồn tại")
	case errors.Is(err, ledgerModel.ErrCodeExpired):
		response.UnprocessableEntity(c, "Giftcode đã hết hạn")
	case errors.Is(err, ledgerModel.ErrCodeAlreadyUsed):
		response.Conflict(c, "Bạn đã sử dụng giftcode này rồi")
	case errors.Is(err, ledgerModel.ErrCodeExhausted):
		response.UnprocessableEntity(c, "Giftcode đã hết lượt sử dụng")
	case errors.Is(err, ledgerModel.ErrAccountBanned):
		appErr := ledgerModel.ErrMsgBanned
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
