package account

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FullName     string `json:"full_name" binding:"required"`
	ReferralCode string `json:"referral_code,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
		validation.Field(&r.FullName,
			validation.Required.Error("full name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.ReferralCode,
			validation.Length(0, 16),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Account      AccountDTO `json:"account"`
}

// ========================================
// PROFILE DTOs
// ========================================

// AccountDTO là view trả về cho client: is_vip và counters đều là
// giá trị derived tại thời điểm đọc, không phải raw storage.
type AccountDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Role                string     `json:"role"`
	Balance             int64      `json:"balance"`
	TotalEarned         int64      `json:"total_earned"`
	TotalGiftcodeEarned int64      `json:"total_giftcode_earned"`
	TasksToday          int        `json:"tasks_today"`
	TasksWeek           int        `json:"tasks_week"`
	SecurityScore       int        `json:"security_score"`
	IsVip               bool       `json:"is_vip"`
	VipTier             string     `json:"vip_tier"`
	VipUntil            *time.Time `json:"vip_until,omitempty"`
	ReferralCode        string     `json:"referral_code"`
	ReferralCount       int        `json:"referral_count"`
	ReferralBonus       int64      `json:"referral_bonus"`
	IsBanned            bool       `json:"is_banned"`
	CreatedAt           time.Time  `json:"created_at"`
}

// LeaderboardRow - bảng xếp hạng theo tổng điểm kiếm được
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	FullName    string `json:"full_name"`
	TotalEarned int64  `json:"total_earned"`
	IsVip       bool   `json:"is_vip"`
}

// ========================================
// ADMIN DTOs
// ========================================

type ListAccountsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"` // email hoặc tên
	Banned *bool  `form:"banned"`
}

type BanRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

func (r BanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason,
			validation.When(r.Banned, validation.Required.Error("ban reason is required")),
			validation.Length(0, 500),
		),
	)
}

type SecurityScoreRequest struct {
	Score int `json:"score"`
}

func (r SecurityScoreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Score, validation.Min(0), validation.Max(100)),
	)
}
