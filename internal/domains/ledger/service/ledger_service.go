package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/ledger/repository"
	vipModel "diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/pkg/cache"
	"diamondnova-backend/pkg/logger"
)

// ledgerService implement Service interface
type ledgerService struct {
	repo    repository.Repository
	tokens  cache.Cache
	rewards config.RewardsConfig
}

// NewLedgerService tạo service instance
func NewLedgerService(repo repository.Repository, tokens cache.Cache, rewards config.RewardsConfig) Service {
	return &ledgerService{
		repo:    repo,
		tokens:  tokens,
		rewards: rewards,
	}
}

// CreditTaskCompletion - FR-TASK-002
//
// Business Logic Flow:
// 1. GETDEL token từ Redis - atomic, exactly-once
// 2. Verify token thuộc về account đang gọi
// 3. Credit với quota guard trong một SQL statement
//
// Edge Cases:
// - Token đã tiêu / hết hạn -> ErrTokenAlreadyUsed (KHÔNG credit lại)
// - Token của account khác -> ErrTokenAlreadyUsed (không leak tồn tại)
// - Quota chạm -> ErrQuotaExceeded, token đã mất
func (s *ledgerService) CreditTaskCompletion(ctx context.Context, accountID uuid.UUID, token string) (*model.TaskCredit, error) {
	// Step 1: consume token - GETDEL nên replay luôn là no-op
	var payload model.TaskToken
	found, err := s.tokens.GetDel(ctx, model.TaskTokenKeyPrefix+token, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if !found {
		return nil, model.ErrTokenAlreadyUsed
	}

	// Step 2: token phải được mint cho đúng account này
	if payload.AccountID != accountID {
		logger.Warn("task token account mismatch", map[string]interface{}{
			"token_account": payload.AccountID,
			"caller":        accountID,
		})
		return nil, model.ErrTokenAlreadyUsed
	}

	// Step 3: credit với daily cap + per-gate quota guard
	credit, err := s.repo.CreditTask(ctx, accountID, payload.Gate, payload.Points,
		s.rewards.DailyTaskCap, payload.GateQuota, token)
	if err != nil {
		return nil, err
	}

	return credit, nil
}

// CreditGiftcode - toàn bộ guard nằm trong repository transaction
func (s *ledgerService) CreditGiftcode(ctx context.Context, accountID uuid.UUID, code string) (*model.Entry, error) {
	if code == "" {
		return nil, model.ErrCodeNotFound
	}

	banned, err := s.repo.IsBanned(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, model.ErrAccountBanned
	}

	return s.repo.RedeemGiftcode(ctx, accountID, code)
}

// PurchaseVip - convert VND sang điểm theo rate cố định, tra bảng tier,
// debit + grant trong một transaction
func (s *ledgerService) PurchaseVip(ctx context.Context, accountID uuid.UUID, amountVND int64) (*model.Entry, *model.VipGrant, error) {
	if amountVND <= 0 {
		return nil, nil, model.ErrInsufficientBalance
	}

	banned, err := s.repo.IsBanned(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if banned {
		return nil, nil, model.ErrAccountBanned
	}

	points := amountVND * s.rewards.PointsPerVND
	spec := vipModel.GrantFor(amountVND)

	reference := fmt.Sprintf("vip:%s:%dvnd", spec.Tier, amountVND)
	return s.repo.DebitForVip(ctx, accountID, points, spec.Tier, spec.DurationDays, reference)
}

// AdminAdjustBalance - admin-only, delta có thể âm
func (s *ledgerService) AdminAdjustBalance(ctx context.Context, adminID, accountID uuid.UUID, delta int64, note string) (*model.Entry, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}

	entry, err := s.repo.AdminAdjust(ctx, accountID, delta, adminID, note)
	if err != nil {
		return nil, err
	}

	logger.Info("admin balance adjustment", map[string]interface{}{
		"admin":   adminID,
		"account": accountID,
		"delta":   delta,
	})

	return entry, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListEntries(ctx, accountID, page, limit)
}
