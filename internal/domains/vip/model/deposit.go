package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DepositStatus - cùng state machine với withdrawal:
// pending → {completed, rejected}, terminal.
type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCompleted DepositStatus = "completed"
	DepositRejected  DepositStatus = "rejected"
)

// DepositRequest - yêu cầu nạp tiền mua VIP qua chuyển khoản.
// Tạo request KHÔNG ảnh hưởng số dư; VIP chỉ được grant khi admin
// xác nhận đã nhận tiền (approve).
type DepositRequest struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DisplayNo int64     `json:"-" db:"display_no"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	VipTier   string    `json:"vip_tier" db:"vip_tier"`
	AmountVND int64     `json:"amount_vnd" db:"amount_vnd"`

	// BankDetails là snapshot của tài khoản nhận được gán lúc tạo -
	// admin đổi cấu hình bank về sau không làm lệch hướng dẫn đã đưa user.
	BankDetails BankSnapshot `json:"bank_details" db:"bank_details"`

	// TransferContent là order tag duy nhất (NOVA<display_no>) user phải
	// ghi vào nội dung chuyển khoản để đối soát.
	TransferContent string `json:"transfer_content" db:"transfer_content"`

	BillURL    *string       `json:"bill_url,omitempty" db:"bill_url"`
	Status     DepositStatus `json:"status" db:"status"`
	ReviewedBy *uuid.UUID    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`

	DisplayCode string `json:"display_code" db:"-"`
}

// BankSnapshot - tài khoản nhận tiền tại thời điểm tạo request
type BankSnapshot struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

var (
	ErrDepositNotFound   = errors.New("deposit request not found")
	ErrDepositReviewed   = errors.New("deposit request already reviewed")
	ErrAmountTooSmall    = errors.New("amount below minimum vip package")
	ErrNoBankConfigured  = errors.New("no receiving bank account configured")
	ErrBillAlreadySet    = errors.New("bill already uploaded")
	ErrInvalidBillImage  = errors.New("bill must be a jpeg or png image")
	ErrDepositNotPending = errors.New("deposit request is not pending")
)

// ========================================
// DTOs
// ========================================

type CreateDepositRequest struct {
	AmountVND int64 `json:"amount_vnd"`
}

func (r CreateDepositRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AmountVND, validation.Required, validation.Min(int64(10000))),
	)
}

type PurchaseRequest struct {
	AmountVND int64 `json:"amount_vnd"`
}

func (r PurchaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AmountVND, validation.Required, validation.Min(int64(1000))),
	)
}

// PackageView - gói VIP hiển thị cho user, derive từ TierTable
type PackageView struct {
	Tier         string `json:"tier"`
	MinAmountVND int64  `json:"min_amount_vnd"`
	DurationDays int    `json:"duration_days"`
	PricePoints  int64  `json:"price_points"` // min_amount_vnd * rate
}

type DepositListFilter struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}
