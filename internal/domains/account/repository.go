package account

import (
	"context"

	"github.com/google/uuid"

	"diamondnova-backend/internal/domains/account/model"
)

// Repository định nghĩa contract cho data access layer.
// Interface cho phép mock trong unit tests và swap implementation.
type Repository interface {
	// Create tạo account mới; nếu referrerID != nil thì credit referral
	// bonus cho người giới thiệu trong CÙNG transaction.
	// Returns: ErrEmailAlreadyExists nếu email đã tồn tại
	Create(ctx context.Context, acc *model.Account, referrerID *uuid.UUID, referralBonus int64) error

	// FindByID tìm account theo ID
	// Returns: ErrAccountNotFound nếu không tìm thấy
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)

	// FindByEmail tìm account theo email, case-insensitive (dùng cho login)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// FindByReferralCode resolve mã giới thiệu lúc đăng ký
	FindByReferralCode(ctx context.Context, code string) (*model.Account, error)

	// ExistsByEmail check trước khi tạo (double guard với unique index)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List cho admin dashboard với search + filter
	List(ctx context.Context, req ListAccountsRequest) ([]*model.Account, int, error)

	// SetBanned set/unset ban với reason
	SetBanned(ctx context.Context, id uuid.UUID, banned bool, reason string) error

	// SetSecurityScore update trust score (0-100)
	SetSecurityScore(ctx context.Context, id uuid.UUID, score int) error

	// Leaderboard top N account theo total_earned
	Leaderboard(ctx context.Context, limit int) ([]*model.Account, error)

	// NormalizeTaskCounters zero các counter đã qua kỳ (reporting
	// hygiene - correctness không phụ thuộc job này vì counter luôn
	// được diễn giải theo last_task_date)
	NormalizeTaskCounters(ctx context.Context) (int64, error)
}
