package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diamondnova-backend/internal/domains/account"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/withdrawal/model"
	"diamondnova-backend/internal/domains/withdrawal/service"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// WithdrawalHandler xử lý HTTP requests cho lệnh rút
type WithdrawalHandler struct {
	service service.Service
}

func NewWithdrawalHandler(service service.Service) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

// Create xử lý POST /withdrawals
func (h *WithdrawalHandler) Create(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	request, err := h.service.Create(c.Request.Context(), accountID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// ListMine xử lý GET /withdrawals
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	requests, total, err := h.service.ListMine(c.Request.Context(), accountID, page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// List xử lý GET /admin/withdrawals
func (h *WithdrawalHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	requests, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// Approve xử lý PUT /admin/withdrawals/:id/approve
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	adminID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	req, err := h.service.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, req)
}

// Reject xử lý PUT /admin/withdrawals/:id/reject
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	adminID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var req model.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	rejected, err := h.service.Reject(c.Request.Context(), id, adminID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rejected)
}

// Export xử lý GET /admin/withdrawals/export.xlsx
func (h *WithdrawalHandler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	data, err := h.service.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("withdrawals_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *WithdrawalHandler) bindFilter(c *gin.Context) (model.ListFilter, bool) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Query params không hợp lệ")
		return filter, false
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return filter, true
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *WithdrawalHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrBelowMinimum):
		response.UnprocessableEntity(c, "Số tiền rút dưới mức tối thiểu")
	case errors.Is(err, model.ErrMissingBankDetails):
		response.UnprocessableEntity(c, "Thiếu thông tin tài khoản ngân hàng")
	case errors.Is(err, model.ErrMissingGameDetails):
		response.UnprocessableEntity(c, "Thiếu thông tin tài khoản game")
	case errors.Is(err, model.ErrRequestNotFound):
		response.NotFound(c, "Lệnh rút không tồn tại")
	case errors.Is(err, model.ErrInvalidTransition):
		response.Conflict(c, "Lệnh rút đã được xử lý trước đó")
	case errors.Is(err, ledgerModel.ErrInsufficientBalance):
		appErr := ledgerModel.ErrMsgInsufficientBalance
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrAccountBanned):
		appErr := ledgerModel.ErrMsgBanned
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrAccountNotFound), errors.Is(err, account.ErrAccountNotFound):
		response.NotFound(c, "Tài khoản không tồn tại")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
