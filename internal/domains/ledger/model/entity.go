package model

import (
	"time"

	"github.com/google/uuid"
)

// EntryType phân loại mọi biến động số dư
type EntryType string

const (
	EntryTask           EntryType = "task"
	EntryGiftcode       EntryType = "giftcode"
	EntryReferral       EntryType = "referral"
	EntryWithdraw       EntryType = "withdraw"
	EntryWithdrawRefund EntryType = "withdraw_refund"
	EntryVipPurchase    EntryType = "vip_purchase"
	EntryAdminAdjust    EntryType = "admin_adjust"
)

// Entry là một dòng audit append-only: mỗi credit/debit thành công
// tạo đúng một Entry trong CÙNG transaction với mutation.
// Không có đường nào khác mutate balance ngoài ledger operations.
type Entry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AccountID    uuid.UUID `json:"account_id" db:"account_id"`
	EntryType    EntryType `json:"entry_type" db:"entry_type"`
	Delta        int64     `json:"delta" db:"delta"`                 // signed, điểm
	BalanceAfter int64     `json:"balance_after" db:"balance_after"` // số dư sau mutation
	Reference    string    `json:"reference" db:"reference"`         // token / code / request id
	Note         *string   `json:"note,omitempty" db:"note"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TaskCredit là kết quả của một lần hoàn thành task
type TaskCredit struct {
	Entry        *Entry `json:"entry"`
	Gate         string `json:"gate"`
	TasksToday   int    `json:"tasks_today"`
	GateCount    int    `json:"gate_count"`
	BalanceAfter int64  `json:"balance_after"`
}

// VipGrant mô tả kết quả nâng cấp VIP
type VipGrant struct {
	Tier     string    `json:"tier"`
	VipUntil time.Time `json:"vip_until"`
}
