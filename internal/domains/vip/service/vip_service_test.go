package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/account"
	accountModel "diamondnova-backend/internal/domains/account/model"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/internal/domains/vip/repository"
)

// fakeAccountRepo - CreateDeposit chỉ cần FindByID
type fakeAccountRepo struct {
	account.Repository
	acc *accountModel.Account
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*accountModel.Account, error) {
	return f.acc, nil
}

type fakeDepositRepo struct {
	repository.Repository
	created []*model.DepositRequest
}

func (f *fakeDepositRepo) Create(ctx context.Context, req *model.DepositRequest) error {
	f.created = append(f.created, req)
	return nil
}

func newTestVipService(accounts account.Repository, repo repository.Repository) Service {
	bank := config.BankConfig{Accounts: []config.ReceivingAccount{
		{BankName: "Vietcombank", AccountNumber: "0123456789", AccountName: "DIAMOND NOVA"},
	}}
	return NewVipService(repo, accounts, nil, nil, nil, nil, bank, config.RewardsConfig{PointsPerVND: 10})
}

func TestCreateDepositBannedAccount(t *testing.T) {
	repo := &fakeDepositRepo{}
	accounts := &fakeAccountRepo{acc: &accountModel.Account{ID: uuid.New(), IsBanned: true}}
	svc := newTestVipService(accounts, repo)

	_, err := svc.CreateDeposit(context.Background(), accounts.acc.ID, model.CreateDepositRequest{AmountVND: 100_000})

	assert.ErrorIs(t, err, ledgerModel.ErrAccountBanned)
	assert.Empty(t, repo.created, "account bị khóa không được tạo deposit request")
}

func TestCreateDeposit(t *testing.T) {
	repo := &fakeDepositRepo{}
	accountID := uuid.New()
	accounts := &fakeAccountRepo{acc: &accountModel.Account{ID: accountID}}
	svc := newTestVipService(accounts, repo)

	deposit, err := svc.CreateDeposit(context.Background(), accountID, model.CreateDepositRequest{AmountVND: 500_000})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	// Tier snapshot từ bảng theo amount, bank snapshot từ pool cấu hình
	assert.Equal(t, model.TierElite, deposit.VipTier)
	assert.Equal(t, accountID, deposit.AccountID)
	assert.Equal(t, "Vietcombank", deposit.BankDetails.BankName)
	assert.Equal(t, "0123456789", deposit.BankDetails.AccountNumber)
}

func TestCreateDepositBelowMinimum(t *testing.T) {
	repo := &fakeDepositRepo{}
	accounts := &fakeAccountRepo{acc: &accountModel.Account{ID: uuid.New()}}
	svc := newTestVipService(accounts, repo)

	_, err := svc.CreateDeposit(context.Background(), accounts.acc.ID, model.CreateDepositRequest{AmountVND: 5_000})
	assert.Error(t, err)
	assert.Empty(t, repo.created)
}
