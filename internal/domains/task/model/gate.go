package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Gate là một cổng vượt link trong registry. Registry nằm trong DB
// (table-driven) để admin thêm/sửa gate không cần deploy lại.
type Gate struct {
	Name         string    `json:"name" db:"name"`
	RewardPoints int64     `json:"reward_points" db:"reward_points"`
	DailyQuota   int       `json:"daily_quota" db:"daily_quota"` // quota riêng của gate, độc lập với cap toàn cục
	IsActive     bool      `json:"is_active" db:"is_active"`
	RedirectURL  string    `json:"redirect_url" db:"redirect_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Domain errors
var (
	ErrGateNotFound = errors.New("gate not found")
	ErrGateInactive = errors.New("gate is inactive")
	ErrGateExists   = errors.New("gate already exists")
)

// ========================================
// DTOs
// ========================================

// GateView là public view cho user: không lộ redirect_url gốc,
// client chỉ nhận URL sau khi đã issue token.
type GateView struct {
	Name         string `json:"name"`
	RewardPoints int64  `json:"reward_points"`
	DailyQuota   int    `json:"daily_quota"`
}

// IssueTokenResponse trả về khi user bấm bắt đầu nhiệm vụ
type IssueTokenResponse struct {
	Token       string    `json:"token"`
	Gate        string    `json:"gate"`
	RedirectURL string    `json:"redirect_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CompleteTaskRequest struct {
	Token string `json:"token"`
}

func (r CompleteTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(16, 128)),
	)
}

// UpsertGateRequest - admin tạo/sửa gate
type UpsertGateRequest struct {
	Name         string `json:"name"`
	RewardPoints int64  `json:"reward_points"`
	DailyQuota   int    `json:"daily_quota"`
	IsActive     *bool  `json:"is_active"`
	RedirectURL  string `json:"redirect_url"`
}

func (r UpsertGateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.RewardPoints, validation.Required, validation.Min(1)),
		validation.Field(&r.DailyQuota, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&r.RedirectURL, validation.Required, validation.Length(10, 2000)),
	)
}
