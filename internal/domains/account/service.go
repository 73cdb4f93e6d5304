package account

import (
	"context"

	"github.com/google/uuid"
)

// Service định nghĩa business logic layer contract
type Service interface {
	// Authentication
	Register(ctx context.Context, req RegisterRequest) (*AccountDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)

	// Profile
	GetProfile(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)

	// Admin
	ListAccounts(ctx context.Context, req ListAccountsRequest) ([]AccountDTO, int, error)
	SetBanned(ctx context.Context, accountID uuid.UUID, req BanRequest) error
	SetSecurityScore(ctx context.Context, accountID uuid.UUID, score int) error
}
