package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/account"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	ledgerService "diamondnova-backend/internal/domains/ledger/service"
	"diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/internal/domains/vip/repository"
	"diamondnova-backend/internal/infrastructure/storage"
	"diamondnova-backend/pkg/logger"
)

// Notifier đẩy thông báo vào inbox của user
type Notifier interface {
	Push(ctx context.Context, accountID uuid.UUID, title, body string) error
}

// Service - business logic cho VIP: mua bằng điểm hoặc nạp chuyển khoản
type Service interface {
	// Packages liệt kê các gói VIP từ bảng tier
	Packages(ctx context.Context) []model.PackageView

	// PurchaseWithPoints mua VIP trực tiếp bằng điểm - debit + grant atomic
	PurchaseWithPoints(ctx context.Context, accountID uuid.UUID, req model.PurchaseRequest) (*ledgerModel.Entry, *ledgerModel.VipGrant, error)

	// CreateDeposit tạo yêu cầu nạp chuyển khoản - không ảnh hưởng số dư
	CreateDeposit(ctx context.Context, accountID uuid.UUID, req model.CreateDepositRequest) (*model.DepositRequest, error)

	// UploadBill validate ảnh bill, resize rồi lưu lên object storage
	UploadBill(ctx context.Context, accountID, depositID uuid.UUID, data []byte) (string, error)

	ListMyDeposits(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.DepositRequest, int, error)

	// Admin
	ListDeposits(ctx context.Context, filter model.DepositListFilter) ([]*model.DepositRequest, int, error)
	ApproveDeposit(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error)
	RejectDeposit(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error)
}

type vipService struct {
	repo     repository.Repository
	accounts account.Repository
	ledger   ledgerService.Service
	storage  *storage.MinIOStorage
	images   *storage.ImageProcessor
	notifier Notifier
	bank     config.BankConfig
	rewards  config.RewardsConfig
}

func NewVipService(
	repo repository.Repository,
	accounts account.Repository,
	ledger ledgerService.Service,
	storage *storage.MinIOStorage,
	images *storage.ImageProcessor,
	notifier Notifier,
	bank config.BankConfig,
	rewards config.RewardsConfig,
) Service {
	return &vipService{
		repo:     repo,
		accounts: accounts,
		ledger:   ledger,
		storage:  storage,
		images:   images,
		notifier: notifier,
		bank:     bank,
		rewards:  rewards,
	}
}

func (s *vipService) Packages(ctx context.Context) []model.PackageView {
	packages := make([]model.PackageView, 0, len(model.TierTable))
	for _, spec := range model.TierTable {
		packages = append(packages, model.PackageView{
			Tier:         spec.Tier,
			MinAmountVND: spec.MinAmountVND,
			DurationDays: spec.DurationDays,
			PricePoints:  spec.MinAmountVND * s.rewards.PointsPerVND,
		})
	}
	return packages
}

func (s *vipService) PurchaseWithPoints(ctx context.Context, accountID uuid.UUID, req model.PurchaseRequest) (*ledgerModel.Entry, *ledgerModel.VipGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	return s.ledger.PurchaseVip(ctx, accountID, req.AmountVND)
}

// CreateDeposit
//
// Business Logic Flow:
// 1. Validate số tiền - phải mua được ít nhất tier thấp nhất
// 2. Chặn tài khoản bị khóa - giống lệnh rút
// 3. Gán một tài khoản nhận từ pool cấu hình (snapshot vào request)
// 4. Insert pending + sinh transfer_content NOVA<display_no>
//
// Số dư KHÔNG bị động tới: tiền đi ngoài hệ thống (chuyển khoản),
// VIP chỉ grant khi admin đối soát xong và approve.
func (s *vipService) CreateDeposit(ctx context.Context, accountID uuid.UUID, req model.CreateDepositRequest) (*model.DepositRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.IsBanned {
		return nil, ledgerModel.ErrAccountBanned
	}

	if len(s.bank.Accounts) == 0 {
		return nil, model.ErrNoBankConfigured
	}

	spec := model.GrantFor(req.AmountVND)

	// Trải đều request qua pool tài khoản nhận
	receiving := s.bank.Accounts[rand.Intn(len(s.bank.Accounts))]

	deposit := &model.DepositRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		VipTier:   spec.Tier,
		AmountVND: req.AmountVND,
		BankDetails: model.BankSnapshot{
			BankName:      receiving.BankName,
			AccountNumber: receiving.AccountNumber,
			AccountName:   receiving.AccountName,
		},
	}

	if err := s.repo.Create(ctx, deposit); err != nil {
		return nil, err
	}

	logger.Info("vip deposit request created", map[string]interface{}{
		"request":    deposit.DisplayCode,
		"account":    accountID,
		"tier":       spec.Tier,
		"amount_vnd": req.AmountVND,
	})

	return deposit, nil
}

// UploadBill - key theo request id nên upload lại sẽ ghi đè ảnh cũ
func (s *vipService) UploadBill(ctx context.Context, accountID, depositID uuid.UUID, data []byte) (string, error) {
	if err := s.images.ValidateImage(data); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidBillImage, err)
	}

	// Re-encode về JPEG nên content type không lấy từ client
	normalized, err := s.images.NormalizeBill(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidBillImage, err)
	}

	key := fmt.Sprintf("bills/%s.jpg", depositID)

	url, err := s.storage.Upload(ctx, key, normalized, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("upload bill: %w", err)
	}

	if err := s.repo.SetBillURL(ctx, depositID, accountID, url); err != nil {
		return "", err
	}

	return url, nil
}

func (s *vipService) ListMyDeposits(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.DepositRequest, int, error) {
	return s.repo.ListByAccount(ctx, accountID, page, limit)
}

func (s *vipService) ListDeposits(ctx context.Context, filter model.DepositListFilter) ([]*model.DepositRequest, int, error) {
	return s.repo.List(ctx, filter)
}

// ApproveDeposit - tier và duration lấy lại từ bảng theo amount đã
// snapshot, không tin tier client gửi lên lúc tạo.
func (s *vipService) ApproveDeposit(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	spec := model.GrantFor(existing.AmountVND)

	req, vipUntil, err := s.repo.Approve(ctx, id, adminID, spec.Tier, spec.DurationDays)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Push(ctx, req.AccountID,
		"Nạp VIP thành công",
		fmt.Sprintf("Yêu cầu %s đã được xác nhận. VIP %s của bạn có hiệu lực đến %s.",
			req.DisplayCode, spec.Tier, vipUntil.Format("02/01/2006 15:04")),
	); err != nil {
		logger.Warn("failed to push vip approval notification", map[string]interface{}{"request": id, "error": err.Error()})
	}

	return req, nil
}

func (s *vipService) RejectDeposit(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error) {
	req, err := s.repo.Reject(ctx, id, adminID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Push(ctx, req.AccountID,
		"Yêu cầu nạp VIP bị từ chối",
		fmt.Sprintf("Yêu cầu %s không được xác nhận. Nếu bạn đã chuyển khoản, liên hệ hỗ trợ kèm bill.", req.DisplayCode),
	); err != nil {
		logger.Warn("failed to push vip rejection notification", map[string]interface{}{"request": id, "error": err.Error()})
	}

	return req, nil
}
