package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/account"
	"diamondnova-backend/internal/domains/account/model"
	"diamondnova-backend/internal/shared/utils"
	"diamondnova-backend/pkg/jwt"
	"diamondnova-backend/pkg/logger"
)

// accountService implement account.Service interface
type accountService struct {
	repo       account.Repository
	jwtManager *jwt.Manager
	rewards    config.RewardsConfig
}

// NewAccountService tạo service instance
func NewAccountService(repo account.Repository, jwtManager *jwt.Manager, rewards config.RewardsConfig) account.Service {
	return &accountService{
		repo:       repo,
		jwtManager: jwtManager,
		rewards:    rewards,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register tạo account mới
//
// Business Logic Flow:
// 1. Validate input
// 2. Check email chưa tồn tại
// 3. Resolve referral code (nếu có) - self-referral bị chặn
// 4. Hash password (bcrypt cost 12)
// 5. INSERT account + credit referrer trong MỘT transaction
func (s *accountService) Register(ctx context.Context, req account.RegisterRequest) (*account.AccountDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, account.ErrEmailAlreadyExists
	}

	// Resolve referral code trước khi tạo account
	var referrerID *uuid.UUID
	if req.ReferralCode != "" {
		referrer, err := s.repo.FindByReferralCode(ctx, req.ReferralCode)
		if err != nil {
			return nil, err
		}
		referrerID = &referrer.ID
	}

	// bcrypt cost 12: cân bằng giữa security và latency
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	referralCode, err := utils.GenerateReferralCode(8)
	if err != nil {
		return nil, fmt.Errorf("generate referral code: %w", err)
	}

	newAccount := &model.Account{
		ID:            uuid.New(),
		Email:         req.Email,
		PasswordHash:  string(passwordHash),
		FullName:      req.FullName,
		Role:          model.RoleUser,
		SecurityScore: 100, // điểm tin cậy khởi đầu, giảm khi có hành vi bất thường
		VipTier:       "none",
		ReferralCode:  referralCode,
		ReferredBy:    referrerID,
	}

	// referred_by set một lần ở đây, không bao giờ mutate về sau
	if err := s.repo.Create(ctx, newAccount, referrerID, s.rewards.ReferralBonus); err != nil {
		return nil, err
	}

	dto := toDTO(newAccount, time.Now())
	return &dto, nil
}

// Login xác thực và trả về JWT tokens
func (s *accountService) Login(ctx context.Context, req account.LoginRequest) (*account.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Không expose "email not found" - tránh user enumeration
		return nil, account.ErrInvalidCredentials
	}

	// bcrypt.CompareHashAndPassword là constant-time comparison
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return nil, account.ErrInvalidCredentials
	}

	if acc.IsBanned {
		return nil, account.ErrAccountBanned
	}

	return s.buildLoginResponse(acc)
}

// RefreshToken cấp lại cặp token mới từ refresh token còn hạn
func (s *accountService) RefreshToken(ctx context.Context, refreshToken string) (*account.LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, account.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, account.ErrInvalidToken
	}

	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if acc.IsBanned {
		return nil, account.ErrAccountBanned
	}

	return s.buildLoginResponse(acc)
}

func (s *accountService) buildLoginResponse(acc *model.Account) (*account.LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(acc.ID.String(), acc.Email, acc.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(acc.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &account.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      toDTO(acc, time.Now()),
	}, nil
}

// ========================================
// PROFILE
// ========================================

// GetProfile - UI luôn re-fetch authoritative state sau mỗi mutation
// thay vì tin local optimistic update; endpoint này là nguồn sự thật.
func (s *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*account.AccountDTO, error) {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	dto := toDTO(acc, time.Now())
	return &dto, nil
}

func (s *accountService) Leaderboard(ctx context.Context, limit int) ([]account.LeaderboardRow, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	accounts, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows := make([]account.LeaderboardRow, 0, len(accounts))
	for i, acc := range accounts {
		rows = append(rows, account.LeaderboardRow{
			Rank:        i + 1,
			FullName:    maskName(acc.FullName),
			TotalEarned: acc.TotalEarned,
			IsVip:       acc.IsVip(now),
		})
	}

	return rows, nil
}

// ========================================
// ADMIN
// ========================================

func (s *accountService) ListAccounts(ctx context.Context, req account.ListAccountsRequest) ([]account.AccountDTO, int, error) {
	accounts, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	dtos := make([]account.AccountDTO, 0, len(accounts))
	for _, acc := range accounts {
		dtos = append(dtos, toDTO(acc, now))
	}

	return dtos, total, nil
}

func (s *accountService) SetBanned(ctx context.Context, accountID uuid.UUID, req account.BanRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.repo.SetBanned(ctx, accountID, req.Banned, req.Reason); err != nil {
		return err
	}

	logger.Info("account ban state changed", map[string]interface{}{
		"account": accountID,
		"banned":  req.Banned,
		"reason":  req.Reason,
	})

	return nil
}

func (s *accountService) SetSecurityScore(ctx context.Context, accountID uuid.UUID, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("security score must be 0-100")
	}
	return s.repo.SetSecurityScore(ctx, accountID, score)
}

// ========================================
// HELPERS
// ========================================

// toDTO derive is_vip và counters tại thời điểm đọc
func toDTO(acc *model.Account, now time.Time) account.AccountDTO {
	return account.AccountDTO{
		ID:                  acc.ID,
		Email:               acc.Email,
		FullName:            acc.FullName,
		Role:                acc.Role,
		Balance:             acc.Balance,
		TotalEarned:         acc.TotalEarned,
		TotalGiftcodeEarned: acc.TotalGiftcodeEarned,
		TasksToday:          acc.EffectiveTasksToday(now),
		TasksWeek:           acc.EffectiveTasksWeek(now),
		SecurityScore:       acc.SecurityScore,
		IsVip:               acc.IsVip(now),
		VipTier:             acc.EffectiveVipTier(now),
		VipUntil:            acc.VipUntil,
		ReferralCode:        acc.ReferralCode,
		ReferralCount:       acc.ReferralCount,
		ReferralBonus:       acc.ReferralBonus,
		IsBanned:            acc.IsBanned,
		CreatedAt:           acc.CreatedAt,
	}
}

// maskName che phần giữa của tên trên leaderboard công khai
func maskName(name string) string {
	runes := []rune(name)
	if len(runes) <= 2 {
		return name
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1])
}
