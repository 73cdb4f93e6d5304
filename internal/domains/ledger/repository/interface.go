package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"diamondnova-backend/internal/domains/ledger/model"
)

// Repository là data access layer duy nhất được phép mutate
// balance / total_earned / task counters của accounts.
//
// Hai nhóm method:
//   - Tx primitives: compose bởi workflow domains (withdrawal, vip)
//     bên trong MỘT transaction của chính nó
//   - Self-contained operations: tự mở transaction, dùng cho các op
//     độc lập (task credit, giftcode redemption, admin adjust)
type Repository interface {
	// ------------------------------------------------------------------
	// TX PRIMITIVES
	// ------------------------------------------------------------------

	// DebitTx trừ điểm với guard chống âm trong CÙNG statement:
	//   balance = balance - points WHERE balance - points >= 0
	// Zero rows affected => ErrInsufficientBalance (hoặc ErrAccountNotFound).
	DebitTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64) (balanceAfter int64, err error)

	// CreditTx cộng điểm. bumpTotalEarned=false cho refund (reversal,
	// không phải earning).
	CreditTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64, bumpTotalEarned bool) (balanceAfter int64, err error)

	// AppendEntryTx ghi audit row trong cùng transaction với mutation
	AppendEntryTx(ctx context.Context, tx pgx.Tx, entry *model.Entry) error

	// ------------------------------------------------------------------
	// SELF-CONTAINED OPERATIONS
	// ------------------------------------------------------------------

	// CreditTask tăng balance/total_earned/counters với quota guard
	// daily-cap và per-gate trong một statement duy nhất.
	// Counters tính theo last_task_date: qua ngày mới thì reset về 0
	// rồi mới cộng, không cần cron reset.
	CreditTask(ctx context.Context, accountID uuid.UUID, gate string, points int64, dailyCap, gateQuota int, reference string) (*model.TaskCredit, error)

	// RedeemGiftcode là một transaction: claim slot trên giftcode row,
	// insert redemption row (unique guard once-per-account), credit
	// balance + total_giftcode_earned, append entry. Commit hoặc không gì cả.
	RedeemGiftcode(ctx context.Context, accountID uuid.UUID, code string) (*model.Entry, error)

	// CreditReferralTx cộng bonus cho người giới thiệu và tăng
	// referral_count/referral_bonus. Chạy trong transaction đăng ký
	// của account được giới thiệu - gọi đúng một lần, không retry.
	CreditReferralTx(ctx context.Context, tx pgx.Tx, referrerID uuid.UUID, amount int64, referredID uuid.UUID) error

	// AdminAdjust clamp tại 0 thay vì fail: GREATEST(balance + delta, 0).
	// Credit cũng tăng total_earned. KHÔNG idempotent - caller không
	// được auto-retry.
	AdminAdjust(ctx context.Context, accountID uuid.UUID, delta int64, adminID uuid.UUID, note string) (*model.Entry, error)

	// DebitForVip trừ điểm và set vip_tier/vip_until trong một transaction
	DebitForVip(ctx context.Context, accountID uuid.UUID, points int64, tier string, days int, reference string) (*model.Entry, *model.VipGrant, error)

	// ------------------------------------------------------------------
	// READS
	// ------------------------------------------------------------------

	// ListEntries trả về lịch sử biến động của một account, mới nhất trước
	ListEntries(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Entry, int, error)

	// IsBanned check trạng thái ban trước khi cho phép mutation
	IsBanned(ctx context.Context, accountID uuid.UUID) (bool, error)
}
