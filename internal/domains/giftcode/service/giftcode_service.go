package service

import (
	"context"

	"github.com/google/uuid"

	"diamondnova-backend/internal/domains/giftcode/model"
	"diamondnova-backend/internal/domains/giftcode/repository"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	ledgerService "diamondnova-backend/internal/domains/ledger/service"
	"diamondnova-backend/pkg/logger"
)

// Service - business logic cho giftcode. Redeem ủy quyền cho ledger
// service (đường mutate số dư duy nhất); phần còn lại là admin CRUD.
type Service interface {
	// Redeem đổi code lấy điểm - atomic, once-per-account, max-uses guard
	Redeem(ctx context.Context, accountID uuid.UUID, req model.RedeemRequest) (*ledgerModel.Entry, error)

	// Admin
	Create(ctx context.Context, adminID uuid.UUID, req model.CreateGiftcodeRequest) (*model.Giftcode, error)
	List(ctx context.Context, page, limit int) ([]*model.GiftcodeStats, int, error)
	Get(ctx context.Context, code string) (*model.Giftcode, error)
	Update(ctx context.Context, code string, req model.UpdateGiftcodeRequest) (*model.Giftcode, error)
	Deactivate(ctx context.Context, code string) error
	ListRedemptions(ctx context.Context, code string, page, limit int) ([]*model.Redemption, int, error)
}

type giftcodeService struct {
	repo   repository.Repository
	ledger ledgerService.Service
}

func NewGiftcodeService(repo repository.Repository, ledger ledgerService.Service) Service {
	return &giftcodeService{repo: repo, ledger: ledger}
}

func (s *giftcodeService) Redeem(ctx context.Context, accountID uuid.UUID, req model.RedeemRequest) (*ledgerModel.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.ledger.CreditGiftcode(ctx, accountID, req.Code)
}

func (s *giftcodeService) Create(ctx context.Context, adminID uuid.UUID, req model.CreateGiftcodeRequest) (*model.Giftcode, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gc := &model.Giftcode{
		Code:      req.NormalizedCode(),
		Amount:    req.Amount,
		MaxUses:   req.MaxUses,
		IsActive:  true,
		CreatedBy: adminID,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.repo.Create(ctx, gc); err != nil {
		return nil, err
	}

	logger.Info("giftcode created", map[string]interface{}{
		"code":     gc.Code,
		"amount":   gc.Amount,
		"max_uses": gc.MaxUses,
		"admin":    adminID,
	})

	return gc, nil
}

func (s *giftcodeService) List(ctx context.Context, page, limit int) ([]*model.GiftcodeStats, int, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *giftcodeService) Get(ctx context.Context, code string) (*model.Giftcode, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *giftcodeService) Update(ctx context.Context, code string, req model.UpdateGiftcodeRequest) (*model.Giftcode, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, code, req)
}

func (s *giftcodeService) Deactivate(ctx context.Context, code string) error {
	return s.repo.SetActive(ctx, code, false)
}

func (s *giftcodeService) ListRedemptions(ctx context.Context, code string, page, limit int) ([]*model.Redemption, int, error) {
	return s.repo.ListRedemptions(ctx, code, page, limit)
}
