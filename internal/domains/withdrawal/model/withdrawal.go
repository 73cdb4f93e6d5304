package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Status - state machine pending → {completed, rejected}, terminal.
// Transition guard nằm trong SQL (WHERE status = 'pending'), zero rows
// nghĩa là request đã được review (có thể bởi admin khác cùng lúc).
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Withdrawal types
const (
	TypeBank = "bank"
	TypeGame = "game"
)

// Request - một lệnh rút. amount_points và details là SNAPSHOT tại
// thời điểm tạo: đổi thông tin ngân hàng về sau không ảnh hưởng
// request đang pending.
type Request struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	DisplayNo    int64      `json:"-" db:"display_no"`
	AccountID    uuid.UUID  `json:"account_id" db:"account_id"`
	AmountVND    int64      `json:"amount_vnd" db:"amount_vnd"`
	AmountPoints int64      `json:"amount_points" db:"amount_points"`
	Type         string     `json:"type" db:"type"`
	Details      Details    `json:"details" db:"details"`
	Status       Status     `json:"status" db:"status"`
	RejectReason *string    `json:"reject_reason,omitempty" db:"reject_reason"`
	AutoApproved bool       `json:"auto_approved" db:"auto_approved"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	// DisplayCode render từ display_no, vd "DN-000123"
	DisplayCode string `json:"display_code" db:"-"`
}

// Details - đích chi trả, serialize vào jsonb. Bank và game dùng chung
// struct, field không liên quan để rỗng.
type Details struct {
	// Bank
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	// Game
	GameName string `json:"game_name,omitempty"`
	GameID   string `json:"game_id,omitempty"`
	Server   string `json:"server,omitempty"`
}

// Domain errors
var (
	ErrRequestNotFound     = errors.New("withdrawal request not found")
	ErrInvalidTransition   = errors.New("request already reviewed")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrMissingBankDetails  = errors.New("bank details are required")
	ErrMissingGameDetails  = errors.New("game details are required")
	ErrRejectReasonMissing = errors.New("reject reason is required")
)

// ========================================
// DTOs
// ========================================

type CreateRequest struct {
	AmountVND int64   `json:"amount_vnd"`
	Type      string  `json:"type"`
	Details   Details `json:"details"`
}

func (r CreateRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.AmountVND, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Type, validation.Required, validation.In(TypeBank, TypeGame)),
	); err != nil {
		return err
	}

	switch r.Type {
	case TypeBank:
		if r.Details.BankName == "" || r.Details.AccountNumber == "" || r.Details.AccountName == "" {
			return ErrMissingBankDetails
		}
	case TypeGame:
		if r.Details.GameName == "" || r.Details.GameID == "" {
			return ErrMissingGameDetails
		}
	}

	return nil
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r RejectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Required.Error("reject reason is required"), validation.Length(3, 500)),
	)
}

// ListFilter cho admin: lọc theo status/type/account
type ListFilter struct {
	Page      int        `form:"page"`
	Limit     int        `form:"limit"`
	Status    string     `form:"status"`
	Type      string     `form:"type"`
	AccountID *uuid.UUID `form:"account_id"`
}
