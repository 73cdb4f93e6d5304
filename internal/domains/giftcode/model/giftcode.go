package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Giftcode - mã quà tặng do admin phát hành. Code lưu UPPER-case,
// match không phân biệt hoa thường. current_uses chỉ tăng qua
// conditional update nên không bao giờ vượt max_uses.
type Giftcode struct {
	Code        string     `json:"code" db:"code"`
	Amount      int64      `json:"amount" db:"amount"`
	MaxUses     int        `json:"max_uses" db:"max_uses"`
	CurrentUses int        `json:"current_uses" db:"current_uses"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedBy   uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// Redemption - một lượt sử dụng. Composite PK (code, account) là
// relational guard cho once-per-account.
type Redemption struct {
	GiftcodeCode string    `json:"giftcode_code" db:"giftcode_code"`
	AccountID    uuid.UUID `json:"account_id" db:"account_id"`
	Amount       int64     `json:"amount" db:"amount"`
	RedeemedAt   time.Time `json:"redeemed_at" db:"redeemed_at"`
}

var (
	ErrGiftcodeNotFound = errors.New("giftcode not found")
	ErrGiftcodeExists   = errors.New("giftcode already exists")
)

// ========================================
// DTOs
// ========================================

type RedeemRequest struct {
	Code string `json:"code"`
}

func (r RedeemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(3, 50)),
	)
}

type CreateGiftcodeRequest struct {
	Code      string     `json:"code"`
	Amount    int64      `json:"amount"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (r CreateGiftcodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(3, 50),
			validation.Match(codePattern).Error("code chỉ gồm chữ, số, gạch ngang")),
		validation.Field(&r.Amount, validation.Required, validation.Min(1)),
		validation.Field(&r.MaxUses, validation.Required, validation.Min(1), validation.Max(1000000)),
	)
}

// NormalizedCode trả về code chuẩn hoá để lưu/match
func (r CreateGiftcodeRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}

type UpdateGiftcodeRequest struct {
	Amount    *int64     `json:"amount"`
	MaxUses   *int       `json:"max_uses"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (r UpdateGiftcodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Min(int64(1))),
		validation.Field(&r.MaxUses, validation.Min(1), validation.Max(1000000)),
	)
}

// GiftcodeStats - view cho admin dashboard kèm usage
type GiftcodeStats struct {
	Giftcode
	TotalPaidOut int64 `json:"total_paid_out"` // current_uses * amount
	Remaining    int   `json:"remaining"`      // max_uses - current_uses
}
