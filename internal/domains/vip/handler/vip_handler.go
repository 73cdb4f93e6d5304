package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/internal/domains/vip/service"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// Bill ảnh chụp từ app ngân hàng, 5MB là quá đủ
const maxBillSize = 5 << 20

// VipHandler xử lý HTTP requests cho VIP
type VipHandler struct {
	service service.Service
}

func NewVipHandler(service service.Service) *VipHandler {
	return &VipHandler{service: service}
}

// Packages xử lý GET /vip/packages - public
func (h *VipHandler) Packages(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Packages(c.Request.Context()))
}

// Purchase xử lý POST /vip/purchase - mua bằng điểm
func (h *VipHandler) Purchase(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	entry, grant, err := h.service.PurchaseWithPoints(c.Request.Context(), accountID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entry": entry, "grant": grant})
}

// CreateDeposit xử lý POST /vip/deposits
func (h *VipHandler) CreateDeposit(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	deposit, err := h.service.CreateDeposit(c.Request.Context(), accountID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, deposit)
}

// UploadBill xử lý POST /vip/deposits/:id/bill (multipart form, field "bill")
func (h *VipHandler) UploadBill(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	fileHeader, err := c.FormFile("bill")
	if err != nil {
		response.BadRequest(c, "Thiếu file bill")
		return
	}
	if fileHeader.Size > maxBillSize {
		response.UnprocessableEntity(c, "File bill vượt quá 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "Không đọc được file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBillSize))
	if err != nil {
		response.InternalServerError(c, "Không đọc được file")
		return
	}

	url, err := h.service.UploadBill(c.Request.Context(), accountID, depositID, data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bill_url": url})
}

// ListMyDeposits xử lý GET /vip/deposits
func (h *VipHandler) ListMyDeposits(c *gin.Context) {
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

	deposits, total, err := h.service.ListMyDeposits(c.Request.Context(), accountID, page, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, deposits, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListDeposits xử lý GET /admin/vip/deposits
func (h *VipHandler) ListDeposits(c *gin.Context) {
	var filter model.DepositListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Query params không hợp lệ")
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	deposits, total, err := h.service.ListDeposits(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, deposits, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// ApproveDeposit xử lý PUT /admin/vip/deposits/:id/approve
func (h *VipHandler) ApproveDeposit(c *gin.Context) {
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

	req, err := h.service.ApproveDeposit(c.Request.Context(), id, adminID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, req)
}

// RejectDeposit xử lý PUT /admin/vip/deposits/:id/reject
func (h *VipHandler) RejectDeposit(c *gin.Context) {
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

	req, err := h.service.RejectDeposit(c.Request.Context(), id, adminID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, req)
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *VipHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrInvalidBillImage):
		response.UnprocessableEntity(c, "Bill phải là ảnh JPEG hoặc PNG")
	case errors.Is(err, model.ErrDepositNotFound):
		response.NotFound(c, "Yêu cầu nạp không tồn tại")
	case errors.Is(err, model.ErrDepositReviewed):
		response.Conflict(c, "Yêu cầu nạp đã được xử lý trước đó")
	case errors.Is(err, model.ErrDepositNotPending):
		response.Conflict(c, "Yêu cầu nạp không còn ở trạng thái chờ")
	case errors.Is(err, model.ErrNoBankConfigured):
		response.InternalServerError(c, "Hệ thống chưa cấu hình tài khoản nhận")
	case errors.Is(err, ledgerModel.ErrInsufficientBalance):
		appErr := ledgerModel.ErrMsgInsufficientBalance
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrAccountBanned):
		appErr := ledgerModel.ErrMsgBanned
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrAccountNotFound):
		response.NotFound(c, "Tài khoản không tồn tại")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
