package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/account"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/withdrawal/model"
	"diamondnova-backend/internal/domains/withdrawal/repository"
	"diamondnova-backend/internal/shared/utils"
	"diamondnova-backend/pkg/logger"
)

// Notifier đẩy thông báo vào inbox của user. Interface hẹp để tránh
// import vòng với notification domain.
type Notifier interface {
	Push(ctx context.Context, accountID uuid.UUID, title, body string) error
}

// Service - business logic cho lệnh rút
type Service interface {
	// Create tạo lệnh rút: debit ngay (reserve), auto-approve nếu đủ
	// điều kiện tin cậy
	Create(ctx context.Context, accountID uuid.UUID, req model.CreateRequest) (*model.Request, error)

	// ListMine - lịch sử rút của user
	ListMine(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Request, int, error)

	// Admin
	List(ctx context.Context, filter model.ListFilter) ([]*model.Request, int, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (*model.Request, error)
	Reject(ctx context.Context, id, adminID uuid.UUID, req model.RejectRequest) (*model.Request, error)
	ExportXLSX(ctx context.Context, filter model.ListFilter) ([]byte, error)
}

type withdrawalService struct {
	repo     repository.Repository
	accounts account.Repository
	notifier Notifier
	cfg      config.WithdrawalConfig
	rewards  config.RewardsConfig
}

func NewWithdrawalService(
	repo repository.Repository,
	accounts account.Repository,
	notifier Notifier,
	cfg config.WithdrawalConfig,
	rewards config.RewardsConfig,
) Service {
	return &withdrawalService{
		repo:     repo,
		accounts: accounts,
		notifier: notifier,
		cfg:      cfg,
		rewards:  rewards,
	}
}

// Create
//
// Business Logic Flow:
// 1. Validate input + số tiền tối thiểu
// 2. Load account: banned check + chất liệu cho auto-approve policy
// 3. Quy đổi VND → điểm theo rate cấu hình
// 4. Auto-approve: security_score đủ cao + số tiền dưới trần + đang VIP
// 5. Repo tạo request trong một transaction kèm debit
//
// Insufficient balance trả về từ DebitTx - service không pre-check
// số dư (read-then-write là race, guard thật nằm trong SQL).
func (s *withdrawalService) Create(ctx context.Context, accountID uuid.UUID, req model.CreateRequest) (*model.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.AmountVND < s.cfg.MinVND {
		return nil, model.ErrBelowMinimum
	}

	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.IsBanned {
		return nil, ledgerModel.ErrAccountBanned
	}

	now := time.Now()
	autoApprove := acc.SecurityScore >= s.cfg.AutoApproveScore &&
		req.AmountVND <= s.cfg.AutoApproveMaxVND &&
		acc.IsVip(now)

	status := model.StatusPending
	if autoApprove {
		status = model.StatusCompleted
	}

	request := &model.Request{
		ID:           uuid.New(),
		AccountID:    accountID,
		AmountVND:    req.AmountVND,
		AmountPoints: req.AmountVND * s.rewards.PointsPerVND,
		Type:         req.Type,
		Details:      req.Details,
	}

	if err := s.repo.Create(ctx, request, status, autoApprove); err != nil {
		return nil, err
	}

	logger.Info("withdrawal request created", map[string]interface{}{
		"request":       request.DisplayCode,
		"account":       accountID,
		"amount_vnd":    req.AmountVND,
		"auto_approved": autoApprove,
	})

	return request, nil
}

func (s *withdrawalService) ListMine(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Request, int, error) {
	return s.repo.ListByAccount(ctx, accountID, page, limit)
}

func (s *withdrawalService) List(ctx context.Context, filter model.ListFilter) ([]*model.Request, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *withdrawalService) Approve(ctx context.Context, id, adminID uuid.UUID) (*model.Request, error) {
	req, err := s.repo.Approve(ctx, id, adminID)
	if err != nil {
		return nil, err
	}

	// Notification fail không rollback transition - best effort
	if err := s.notifier.Push(ctx, req.AccountID,
		"Lệnh rút đã được duyệt",
		fmt.Sprintf("Lệnh rút %s (%d VND) đã được xử lý thành công.", req.DisplayCode, req.AmountVND),
	); err != nil {
		logger.Warn("failed to push approval notification", map[string]interface{}{"request": id, "error": err.Error()})
	}

	return req, nil
}

func (s *withdrawalService) Reject(ctx context.Context, id, adminID uuid.UUID, req model.RejectRequest) (*model.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rejected, err := s.repo.RejectWithRefund(ctx, id, adminID, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Push(ctx, rejected.AccountID,
		"Lệnh rút bị từ chối",
		fmt.Sprintf("Lệnh rút %s bị từ chối: %s. Điểm đã được hoàn lại.", rejected.DisplayCode, req.Reason),
	); err != nil {
		logger.Warn("failed to push rejection notification", map[string]interface{}{"request": id, "error": err.Error()})
	}

	return rejected, nil
}

// ExportXLSX xuất danh sách lệnh rút cho kế toán đối soát
func (s *withdrawalService) ExportXLSX(ctx context.Context, filter model.ListFilter) ([]byte, error) {
	// Export bỏ qua pagination của filter: đọc theo batch cho đến hết
	// để dòng tổng không bao giờ thiếu lệnh
	const batchSize = 1000
	filter.Limit = batchSize

	var requests []*model.Request
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		requests = append(requests, batch...)
		if len(batch) < batchSize || len(requests) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Withdrawals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Mã", "Ngày tạo", "Loại", "Số tiền (VND)", "Điểm", "Trạng thái", "Đích chi trả", "Lý do từ chối"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	var totalVND, totalPoints int64
	for rowIdx, req := range requests {
		totalVND += req.AmountVND
		totalPoints += req.AmountPoints

		dest := req.Details.GameID
		if req.Type == model.TypeBank {
			dest = fmt.Sprintf("%s - %s - %s", req.Details.BankName, req.Details.AccountNumber, req.Details.AccountName)
		} else if req.Details.GameName != "" {
			dest = fmt.Sprintf("%s - %s", req.Details.GameName, req.Details.GameID)
		}

		reason := ""
		if req.RejectReason != nil {
			reason = *req.RejectReason
		}

		values := []interface{}{
			req.DisplayCode,
			req.CreatedAt.Format("2006-01-02 15:04:05"),
			req.Type,
			req.AmountVND,
			req.AmountPoints,
			string(req.Status),
			dest,
			reason,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	// Dòng tổng cho kế toán: cột điểm quy về VND phải khớp cột VND,
	// lệch nghĩa là rate đổi giữa chừng hoặc data lỗi
	totalRow := len(requests) + 2
	totals := []interface{}{
		"TỔNG", "", "",
		totalVND,
		totalPoints,
		"",
		fmt.Sprintf("Quy đổi: %s VND", utils.VNDFromPoints(totalPoints, s.rewards.PointsPerVND).String()),
		"",
	}
	for colIdx, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, totalRow)
		f.SetCellValue(sheet, cell, v)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	return buf.Bytes(), nil
}
