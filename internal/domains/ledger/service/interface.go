package service

import (
	"context"

	"github.com/google/uuid"

	"diamondnova-backend/internal/domains/ledger/model"
)

// Service là business logic layer của ledger - đường duy nhất
// mà các domain khác được phép đi qua để mutate số dư.
type Service interface {
	// CreditTaskCompletion tiêu token (exactly-once) rồi credit điểm
	// với quota guard. Token đã tiêu mà credit fail (quota) thì token
	// mất luôn - một task đã chạm quota không được credit lại.
	CreditTaskCompletion(ctx context.Context, accountID uuid.UUID, token string) (*model.TaskCredit, error)

	// CreditGiftcode redeem một giftcode cho account - atomic, once-per-account
	CreditGiftcode(ctx context.Context, accountID uuid.UUID, code string) (*model.Entry, error)

	// PurchaseVip mua VIP bằng điểm: debit + grant theo bảng tier
	PurchaseVip(ctx context.Context, accountID uuid.UUID, amountVND int64) (*model.Entry, *model.VipGrant, error)

	// AdminAdjustBalance chỉnh số dư thủ công, clamp tại 0.
	// KHÔNG idempotent - không bao giờ auto-retry.
	AdminAdjustBalance(ctx context.Context, adminID, accountID uuid.UUID, delta int64, note string) (*model.Entry, error)

	// GetHistory trả về lịch sử biến động số dư của account
	GetHistory(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Entry, int, error)
}
