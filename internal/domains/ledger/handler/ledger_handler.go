package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/ledger/service"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// LedgerHandler xử lý HTTP requests cho lịch sử điểm và admin adjust
type LedgerHandler struct {
	service service.Service
}

func NewLedgerHandler(service service.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// AdjustBalanceRequest - admin chỉnh số dư thủ công
type AdjustBalanceRequest struct {
	Delta int64  `json:"delta" binding:"required"`
	Note  string `json:"note"`
}

func (r AdjustBalanceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Delta, validation.Required, validation.NotIn(int64(0))),
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}

// GetHistory xử lý GET /users/me/ledger
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.service.GetHistory(c.Request.Context(), accountID, page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// AdminAdjust xử lý POST /admin/users/:id/balance
func (h *LedgerHandler) AdminAdjust(c *gin.Context) {
	adminID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid account id")
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VAL_INVALID_INPUT", "validation failed", err)
		return
	}

	entry, err := h.service.AdminAdjustBalance(c.Request.Context(), adminID, accountID, req.Delta, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// AdminGetHistory xử lý GET /admin/users/:id/ledger
func (h *LedgerHandler) AdminGetHistory(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid account id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, total, err := h.service.GetHistory(c.Request.Context(), accountID, page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// handleError map ledger sentinel errors sang HTTP status + user message
func (h *LedgerHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrAccountNotFound):
		response.NotFound(c, "Tài khoản không tồn tại")
	case errors.Is(err, model.ErrAccountBanned):
		appErr := model.ErrMsgBanned
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, model.ErrInsufficientBalance):
		appErr := model.ErrMsgInsufficientBalance
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, model.ErrStoreUnavailable):
		response.ErrorResponse(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Hệ thống đang bận, vui lòng thử lại")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
