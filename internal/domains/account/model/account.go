package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account là user record của platform. Balance và các counter chỉ được
// mutate qua ledger operations - account domain chỉ đọc và quản lý
// identity/trạng thái.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose in JSON
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        *string   `json:"phone" db:"phone"`
	Role         string    `json:"role" db:"role"`

	// Economic state - ledger-owned
	Balance             int64 `json:"balance" db:"balance"`
	TotalEarned         int64 `json:"total_earned" db:"total_earned"`
	TotalGiftcodeEarned int64 `json:"total_giftcode_earned" db:"total_giftcode_earned"`

	// Activity counters - diễn giải theo LastTaskDate, xem EffectiveTasksToday
	TasksToday   int            `json:"-" db:"tasks_today"`
	TasksWeek    int            `json:"-" db:"tasks_week"`
	TaskCounts   map[string]int `json:"task_counts" db:"task_counts"`
	LastTaskDate *time.Time     `json:"last_task_date" db:"last_task_date"`

	// Trust / standing
	IsBanned      bool       `json:"is_banned" db:"is_banned"`
	BanReason     *string    `json:"ban_reason,omitempty" db:"ban_reason"`
	BannedAt      *time.Time `json:"banned_at,omitempty" db:"banned_at"`
	SecurityScore int        `json:"security_score" db:"security_score"` // 0-100

	// VIP state - is_vip KHÔNG lưu trong DB, luôn derive từ vip_until
	VipTier  string     `json:"vip_tier" db:"vip_tier"`
	VipUntil *time.Time `json:"vip_until,omitempty" db:"vip_until"`

	// Referral linkage - referred_by set một lần lúc tạo, không bao giờ đổi
	ReferralCode  string     `json:"referral_code" db:"referral_code"`
	ReferredBy    *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"`
	ReferralCount int        `json:"referral_count" db:"referral_count"`
	ReferralBonus int64      `json:"referral_bonus" db:"referral_bonus"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsVip là giá trị DERIVED: vip_until > now. Không bao giờ lưu riêng
// để tránh staleness.
func (a *Account) IsVip(now time.Time) bool {
	return a.VipUntil != nil && a.VipUntil.After(now)
}

// EffectiveVipTier trả về "none" khi VIP đã hết hạn dù vip_tier còn giá trị cũ
func (a *Account) EffectiveVipTier(now time.Time) string {
	if !a.IsVip(now) {
		return "none"
	}
	return a.VipTier
}

// EffectiveTasksToday - counter chỉ có nghĩa nếu last_task_date là hôm nay.
// Qua ngày mới thì giá trị lưu trữ là số của ngày cũ, tính là 0.
func (a *Account) EffectiveTasksToday(now time.Time) int {
	if a.LastTaskDate == nil || !sameDay(*a.LastTaskDate, now) {
		return 0
	}
	return a.TasksToday
}

// EffectiveTasksWeek tương tự theo ISO week
func (a *Account) EffectiveTasksWeek(now time.Time) int {
	if a.LastTaskDate == nil || !sameISOWeek(*a.LastTaskDate, now) {
		return 0
	}
	return a.TasksWeek
}

// EffectiveGateCount - per-gate count cũng reset theo ngày
func (a *Account) EffectiveGateCount(gate string, now time.Time) int {
	if a.LastTaskDate == nil || !sameDay(*a.LastTaskDate, now) {
		return 0
	}
	return a.TaskCounts[gate]
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
