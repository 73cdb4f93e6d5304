package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/task/model"
	"diamondnova-backend/internal/domains/task/service"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// TaskHandler xử lý HTTP requests cho nhiệm vụ vượt link
type TaskHandler struct {
	service service.Service
}

func NewTaskHandler(service service.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

// ========================================
// USER ENDPOINTS
// ========================================

// ListGates xử lý GET /tasks/gates
func (h *TaskHandler) ListGates(c *gin.Context) {
	gates, err := h.service.ListGates(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gates)
}

// IssueToken xử lý POST /tasks/gates/:name/token
func (h *TaskHandler) IssueToken(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	resp, err := h.service.IssueToken(c.Request.Context(), accountID, c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Complete xử lý POST /tasks/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	var req model.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	credit, err := h.service.Complete(c.Request.Context(), accountID, req.Token)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, credit)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// AdminListGates xử lý GET /admin/gates
func (h *TaskHandler) AdminListGates(c *gin.Context) {
	gates, err := h.service.ListAllGates(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gates)
}

// CreateGate xử lý POST /admin/gates
func (h *TaskHandler) CreateGate(c *gin.Context) {
	var req model.UpsertGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	gate, err := h.service.CreateGate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gate)
}

// UpdateGate xử lý PUT /admin/gates/:name
func (h *TaskHandler) UpdateGate(c *gin.Context) {
	var req model.UpsertGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	gate, err := h.service.UpdateGate(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gate)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetGateActive xử lý PUT /admin/gates/:name/active
func (h *TaskHandler) SetGateActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	if err := h.service.SetGateActive(c.Request.Context(), c.Param("name"), req.Active); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"name": c.Param("name"), "active": req.Active})
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *TaskHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, model.ErrGateNotFound):
		response.NotFound(c, "Cổng nhiệm vụ không tồn tại")
	case errors.Is(err, model.ErrGateInactive):
		response.UnprocessableEntity(c, "Cổng nhiệm vụ đang tạm đóng")
	case errors.Is(err, model.ErrGateExists):
		response.Conflict(c, "Cổng nhiệm vụ đã tồn tại")
	case errors.Is(err, ledgerModel.ErrTokenAlreadyUsed):
		appErr := ledgerModel.ErrMsgTokenUsed
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrQuotaExceeded):
		appErr := ledgerModel.ErrMsgQuotaExceeded
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrAccountBanned):
		appErr := ledgerModel.ErrMsgBanned
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
	case errors.Is(err, ledgerModel.ErrGateInactive):
		response.UnprocessableEntity(c, "Cổng nhiệm vụ đang tạm đóng")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
