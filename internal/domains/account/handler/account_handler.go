package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diamondnova-backend/internal/domains/account"
	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
)

// AccountHandler xử lý HTTP requests cho authentication và profile
type AccountHandler struct {
	service account.Service
}

func NewAccountHandler(service account.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// ========================================
// PUBLIC ENDPOINTS
// ========================================

// Register xử lý POST /auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// Login xử lý POST /auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken xử lý POST /auth/refresh
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(c, "refresh_token là bắt buộc")
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Leaderboard xử lý GET /leaderboard - public, tên đã được mask
func (h *AccountHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rows)
}

// ========================================
// AUTHENTICATED ENDPOINTS
// ========================================

// GetProfile xử lý GET /users/me
func (h *AccountHandler) GetProfile(c *gin.Context) {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing account identity")
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListAccounts xử lý GET /admin/users
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var req account.ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Query params không hợp lệ")
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	dtos, total, err := h.service.ListAccounts(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, dtos, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

// SetBanned xử lý PUT /admin/users/:id/ban
func (h *AccountHandler) SetBanned(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var req account.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}

	if err := h.service.SetBanned(c.Request.Context(), accountID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"banned": req.Banned})
}

// SetSecurityScore xử lý PUT /admin/users/:id/security-score
func (h *AccountHandler) SetSecurityScore(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID không hợp lệ")
		return
	}

	var req account.SecurityScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Dữ liệu không hợp lệ")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	if err := h.service.SetSecurityScore(c.Request.Context(), accountID, req.Score); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"security_score": req.Score})
}

// ========================================
// ERROR MAPPING
// ========================================

func (h *AccountHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, account.ErrEmailAlreadyExists):
		response.Conflict(c, "Email đã được sử dụng")
	case errors.Is(err, account.ErrReferralNotFound):
		response.UnprocessableEntity(c, "Mã giới thiệu không tồn tại")
	case errors.Is(err, account.ErrInvalidCredentials):
		response.Unauthorized(c, "Email hoặc mật khẩu không đúng")
	case errors.Is(err, account.ErrAccountBanned):
		response.Forbidden(c, "Tài khoản đã bị khóa")
	case errors.Is(err, account.ErrInvalidToken):
		response.Unauthorized(c, "Token không hợp lệ hoặc đã hết hạn")
	case errors.Is(err, account.ErrAccountNotFound):
		response.NotFound(c, "Tài khoản không tồn tại")
	default:
		response.InternalServerError(c, "Có lỗi xảy ra, vui lòng thử lại sau")
	}
}
