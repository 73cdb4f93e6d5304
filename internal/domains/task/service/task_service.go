package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diamondnova-backend/internal/config"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	ledgerService "diamondnova-backend/internal/domains/ledger/service"
	"diamondnova-backend/internal/domains/task/model"
	"diamondnova-backend/internal/domains/task/repository"
	"diamondnova-backend/pkg/cache"
	"diamondnova-backend/pkg/logger"
)

// Service là business logic cho vòng đời nhiệm vụ:
// list gates → issue token → (user vượt link) → complete.
type Service interface {
	// ListGates trả về các gate đang mở cho user
	ListGates(ctx context.Context) ([]*model.GateView, error)

	// IssueToken mint token phía server cho một lượt vượt link.
	// Token là nguồn sự thật duy nhất - URL trả về cho client không
	// mang thông tin gì mà server chưa ghi nhận.
	IssueToken(ctx context.Context, accountID uuid.UUID, gateName string) (*model.IssueTokenResponse, error)

	// Complete tiêu token và credit điểm qua ledger
	Complete(ctx context.Context, accountID uuid.UUID, token string) (*ledgerModel.TaskCredit, error)

	// Admin gate registry
	ListAllGates(ctx context.Context) ([]*model.Gate, error)
	CreateGate(ctx context.Context, req model.UpsertGateRequest) (*model.Gate, error)
	UpdateGate(ctx context.Context, name string, req model.UpsertGateRequest) (*model.Gate, error)
	SetGateActive(ctx context.Context, name string, active bool) error
}

type taskService struct {
	repo    repository.Repository
	ledger  ledgerService.Service
	cache   cache.Cache
	rewards config.RewardsConfig
}

func NewTaskService(repo repository.Repository, ledger ledgerService.Service, cache cache.Cache, rewards config.RewardsConfig) Service {
	return &taskService{
		repo:    repo,
		ledger:  ledger,
		cache:   cache,
		rewards: rewards,
	}
}

func (s *taskService) ListGates(ctx context.Context) ([]*model.GateView, error) {
	gates, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*model.GateView, 0, len(gates))
	for _, g := range gates {
		views = append(views, &model.GateView{
			Name:         g.Name,
			RewardPoints: g.RewardPoints,
			DailyQuota:   g.DailyQuota,
		})
	}

	return views, nil
}

// IssueToken
//
// Business Logic Flow:
// 1. Gate phải tồn tại và đang active
// 2. Mint token random (128-bit) - KHÔNG derive từ account/gate để
//    token không đoán được
// 3. Ghi payload {account, gate, points, quota} vào Redis với TTL
// 4. Trả redirect_url kèm token cho client
//
// Quota KHÔNG check ở đây: check tại issue chỉ là advisory vì user có
// thể giữ nhiều token. Guard thật nằm trong SQL lúc credit.
func (s *taskService) IssueToken(ctx context.Context, accountID uuid.UUID, gateName string) (*model.IssueTokenResponse, error) {
	gate, err := s.repo.FindByName(ctx, gateName)
	if err != nil {
		return nil, err
	}
	if !gate.IsActive {
		return nil, model.ErrGateInactive
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	token := ledgerModel.TaskToken{
		Token:     hex.EncodeToString(raw),
		AccountID: accountID,
		Gate:      gate.Name,
		Points:    gate.RewardPoints,
		GateQuota: gate.DailyQuota,
		IssuedAt:  now,
	}

	ttl := time.Duration(s.rewards.TaskTokenTTLSecs) * time.Second
	if err := s.cache.Set(ctx, token.Key(), token, ttl); err != nil {
		return nil, fmt.Errorf("store task token: %w", err)
	}

	logger.Debug("task token issued", map[string]interface{}{
		"account": accountID,
		"gate":    gate.Name,
	})

	return &model.IssueTokenResponse{
		Token:       token.Token,
		Gate:        gate.Name,
		RedirectURL: gate.RedirectURL,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

func (s *taskService) Complete(ctx context.Context, accountID uuid.UUID, token string) (*ledgerModel.TaskCredit, error) {
	return s.ledger.CreditTaskCompletion(ctx, accountID, token)
}

// ========================================
// ADMIN - GATE REGISTRY
// ========================================

func (s *taskService) ListAllGates(ctx context.Context) ([]*model.Gate, error) {
	return s.repo.ListAll(ctx)
}

func (s *taskService) CreateGate(ctx context.Context, req model.UpsertGateRequest) (*model.Gate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	gate := &model.Gate{
		Name:         req.Name,
		RewardPoints: req.RewardPoints,
		DailyQuota:   req.DailyQuota,
		IsActive:     active,
		RedirectURL:  req.RedirectURL,
	}

	if err := s.repo.Create(ctx, gate); err != nil {
		return nil, err
	}

	return gate, nil
}

func (s *taskService) UpdateGate(ctx context.Context, name string, req model.UpsertGateRequest) (*model.Gate, error) {
	req.Name = name
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gate, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	gate.RewardPoints = req.RewardPoints
	gate.DailyQuota = req.DailyQuota
	gate.RedirectURL = req.RedirectURL
	if req.IsActive != nil {
		gate.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, gate); err != nil {
		return nil, err
	}

	return gate, nil
}

func (s *taskService) SetGateActive(ctx context.Context, name string, active bool) error {
	return s.repo.SetActive(ctx, name, active)
}
