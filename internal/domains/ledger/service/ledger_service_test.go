package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/ledger/model"
)

// ====================================
// Fakes
// ====================================

// fakeTokenStore giả lập Redis - GetDel xóa key nên lần đọc thứ hai miss
type fakeTokenStore struct {
	data    map[string][]byte
	pingErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{data: map[string][]byte{}}
}

func (f *fakeTokenStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeTokenStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeTokenStore) GetDel(ctx context.Context, key string, dest interface{}) (bool, error) {
	if f.pingErr != nil {
		return false, f.pingErr
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	delete(f.data, key)
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeTokenStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeTokenStore) Ping(ctx context.Context) error { return f.pingErr }

// fakeLedgerRepo - chỉ implement các method service gọi tới,
// phần còn lại panic để test fail rõ ràng nếu service gọi nhầm
type fakeLedgerRepo struct {
	creditTaskFn     func(accountID uuid.UUID, gate string, points int64, dailyCap, gateQuota int, reference string) (*model.TaskCredit, error)
	redeemGiftcodeFn func(accountID uuid.UUID, code string) (*model.Entry, error)
	debitForVipFn    func(accountID uuid.UUID, points int64, tier string, days int, reference string) (*model.Entry, *model.VipGrant, error)
	adminAdjustFn    func(accountID uuid.UUID, delta int64, adminID uuid.UUID, note string) (*model.Entry, error)
	banned           bool
	bannedErr        error
}

func (f *fakeLedgerRepo) CreditTask(ctx context.Context, accountID uuid.UUID, gate string, points int64, dailyCap, gateQuota int, reference string) (*model.TaskCredit, error) {
	return f.creditTaskFn(accountID, gate, points, dailyCap, gateQuota, reference)
}

func (f *fakeLedgerRepo) RedeemGiftcode(ctx context.Context, accountID uuid.UUID, code string) (*model.Entry, error) {
	return f.redeemGiftcodeFn(accountID, code)
}

func (f *fakeLedgerRepo) DebitForVip(ctx context.Context, accountID uuid.UUID, points int64, tier string, days int, reference string) (*model.Entry, *model.VipGrant, error) {
	return f.debitForVipFn(accountID, points, tier, days, reference)
}

func (f *fakeLedgerRepo) AdminAdjust(ctx context.Context, accountID uuid.UUID, delta int64, adminID uuid.UUID, note string) (*model.Entry, error) {
	return f.adminAdjustFn(accountID, delta, adminID, note)
}

func (f *fakeLedgerRepo) IsBanned(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return f.banned, f.bannedErr
}

func (f *fakeLedgerRepo) ListEntries(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Entry, int, error) {
	return nil, 0, nil
}

func (f *fakeLedgerRepo) DebitTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64) (int64, error) {
	panic("not used")
}

func (f *fakeLedgerRepo) CreditTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64, bumpTotalEarned bool) (int64, error) {
	panic("not used")
}

func (f *fakeLedgerRepo) AppendEntryTx(ctx context.Context, tx pgx.Tx, entry *model.Entry) error {
	panic("not used")
}

func (f *fakeLedgerRepo) CreditReferralTx(ctx context.Context, tx pgx.Tx, referrerID uuid.UUID, amount int64, referredID uuid.UUID) error {
	panic("not used")
}

func testRewards() config.RewardsConfig {
	return config.RewardsConfig{
		PointsPerVND:     10,
		DailyTaskCap:     10,
		ReferralBonus:    500,
		TaskTokenTTLSecs: 600,
	}
}

// ====================================
// CreditTaskCompletion
// ====================================

func TestCreditTaskCompletion(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	mintToken := func(store *fakeTokenStore, owner uuid.UUID) model.TaskToken {
		token := model.TaskToken{
			Token:     "a1b2c3d4e5f60718",
			AccountID: owner,
			Gate:      "link4m",
			Points:    100,
			GateQuota: 5,
			IssuedAt:  time.Now(),
		}
		require.NoError(t, store.Set(ctx, token.Key(), token, 10*time.Minute))
		return token
	}

	t.Run("credit thành công và token bị tiêu", func(t *testing.T) {
		store := newFakeTokenStore()
		token := mintToken(store, accountID)

		repo := &fakeLedgerRepo{
			creditTaskFn: func(id uuid.UUID, gate string, points int64, dailyCap, gateQuota int, reference string) (*model.TaskCredit, error) {
				assert.Equal(t, accountID, id)
				assert.Equal(t, "link4m", gate)
				assert.Equal(t, int64(100), points)
				assert.Equal(t, 10, dailyCap)
				assert.Equal(t, 5, gateQuota)
				assert.Equal(t, token.Token, reference)
				return &model.TaskCredit{Gate: gate, TasksToday: 1, BalanceAfter: 100}, nil
			},
		}

		svc := NewLedgerService(repo, store, testRewards())
		credit, err := svc.CreditTaskCompletion(ctx, accountID, token.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(100), credit.BalanceAfter)

		// Replay cùng token phải fail - GETDEL đã xóa
		_, err = svc.CreditTaskCompletion(ctx, accountID, token.Token)
		assert.ErrorIs(t, err, model.ErrTokenAlreadyUsed)
	})

	t.Run("token không tồn tại", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{}, newFakeTokenStore(), testRewards())
		_, err := svc.CreditTaskCompletion(ctx, accountID, "deadbeef")
		assert.ErrorIs(t, err, model.ErrTokenAlreadyUsed)
	})

	t.Run("token của account khác bị tiêu nhưng không credit", func(t *testing.T) {
		store := newFakeTokenStore()
		token := mintToken(store, uuid.New()) // owner khác

		repo := &fakeLedgerRepo{
			creditTaskFn: func(uuid.UUID, string, int64, int, int, string) (*model.TaskCredit, error) {
				t.Fatal("không được credit cho token mismatch")
				return nil, nil
			},
		}

		svc := NewLedgerService(repo, store, testRewards())
		_, err := svc.CreditTaskCompletion(ctx, accountID, token.Token)
		assert.ErrorIs(t, err, model.ErrTokenAlreadyUsed)
		assert.Empty(t, store.data, "token vẫn phải bị tiêu")
	})

	t.Run("quota exceeded sau khi token đã tiêu", func(t *testing.T) {
		store := newFakeTokenStore()
		token := mintToken(store, accountID)

		repo := &fakeLedgerRepo{
			creditTaskFn: func(uuid.UUID, string, int64, int, int, string) (*model.TaskCredit, error) {
				return nil, model.ErrQuotaExceeded
			},
		}

		svc := NewLedgerService(repo, store, testRewards())
		_, err := svc.CreditTaskCompletion(ctx, accountID, token.Token)
		assert.ErrorIs(t, err, model.ErrQuotaExceeded)
		assert.Empty(t, store.data, "token mất luôn, task chạm quota không credit lại được")
	})

	t.Run("redis down trả về lỗi retryable", func(t *testing.T) {
		store := newFakeTokenStore()
		store.pingErr = errors.New("connection refused")

		svc := NewLedgerService(&fakeLedgerRepo{}, store, testRewards())
		_, err := svc.CreditTaskCompletion(ctx, accountID, "cafebabe")
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
		assert.True(t, model.IsRetryable(err))
	})
}

// ====================================
// CreditGiftcode
// ====================================

func TestCreditGiftcode(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("code rỗng", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{}, newFakeTokenStore(), testRewards())
		_, err := svc.CreditGiftcode(ctx, accountID, "")
		assert.ErrorIs(t, err, model.ErrCodeNotFound)
	})

	t.Run("account bị ban", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{banned: true}, newFakeTokenStore(), testRewards())
		_, err := svc.CreditGiftcode(ctx, accountID, "TET2025")
		assert.ErrorIs(t, err, model.ErrAccountBanned)
	})

	t.Run("redeem delegate xuống repository", func(t *testing.T) {
		entry := &model.Entry{ID: uuid.New(), EntryType: model.EntryGiftcode, Delta: 5000}
		repo := &fakeLedgerRepo{
			redeemGiftcodeFn: func(id uuid.UUID, code string) (*model.Entry, error) {
				assert.Equal(t, accountID, id)
				assert.Equal(t, "TET2025", code)
				return entry, nil
			},
		}

		svc := NewLedgerService(repo, newFakeTokenStore(), testRewards())
		got, err := svc.CreditGiftcode(ctx, accountID, "TET2025")
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})
}

// ====================================
// PurchaseVip
// ====================================

func TestPurchaseVip(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("amount không dương", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{}, newFakeTokenStore(), testRewards())
		_, _, err := svc.PurchaseVip(ctx, accountID, 0)
		assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	})

	t.Run("convert điểm và tra bảng tier", func(t *testing.T) {
		repo := &fakeLedgerRepo{
			debitForVipFn: func(id uuid.UUID, points int64, tier string, days int, reference string) (*model.Entry, *model.VipGrant, error) {
				assert.Equal(t, int64(1_000_000), points, "100k VND x 10 P")
				assert.Equal(t, "pro", tier)
				assert.Equal(t, 7, days)
				return &model.Entry{Delta: -points}, &model.VipGrant{Tier: tier}, nil
			},
		}

		svc := NewLedgerService(repo, newFakeTokenStore(), testRewards())
		entry, grant, err := svc.PurchaseVip(ctx, accountID, 100_000)
		require.NoError(t, err)
		assert.Equal(t, int64(-1_000_000), entry.Delta)
		assert.Equal(t, "pro", grant.Tier)
	})

	t.Run("account bị ban không được mua", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{banned: true}, newFakeTokenStore(), testRewards())
		_, _, err := svc.PurchaseVip(ctx, accountID, 100_000)
		assert.ErrorIs(t, err, model.ErrAccountBanned)
	})
}

// ====================================
// AdminAdjustBalance
// ====================================

func TestAdminAdjustBalance(t *testing.T) {
	ctx := context.Background()
	adminID, accountID := uuid.New(), uuid.New()

	t.Run("delta zero bị từ chối", func(t *testing.T) {
		svc := NewLedgerService(&fakeLedgerRepo{}, newFakeTokenStore(), testRewards())
		_, err := svc.AdminAdjustBalance(ctx, adminID, accountID, 0, "typo")
		assert.Error(t, err)
	})

	t.Run("delta âm đi thẳng xuống repo", func(t *testing.T) {
		repo := &fakeLedgerRepo{
			adminAdjustFn: func(id uuid.UUID, delta int64, by uuid.UUID, note string) (*model.Entry, error) {
				assert.Equal(t, int64(-300), delta)
				assert.Equal(t, adminID, by)
				assert.Equal(t, "fraud rollback", note)
				return &model.Entry{Delta: delta, BalanceAfter: 0}, nil
			},
		}

		svc := NewLedgerService(repo, newFakeTokenStore(), testRewards())
		entry, err := svc.AdminAdjustBalance(ctx, adminID, accountID, -300, "fraud rollback")
		require.NoError(t, err)
		assert.Equal(t, int64(0), entry.BalanceAfter, "clamp tại 0, không âm")
	})
}
