package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	ledgerRepo "diamondnova-backend/internal/domains/ledger/repository"
	"diamondnova-backend/internal/domains/withdrawal/model"
	"diamondnova-backend/internal/shared/utils"
	"diamondnova-backend/pkg/database"
)

// Repository - data access cho lệnh rút. Debit và refund đi qua
// ledger Tx primitives để request row và balance mutation cùng
// commit hoặc cùng rollback.
type Repository interface {
	// Create debit trước rồi insert request - MỘT transaction.
	// Điểm đã trừ là "đã reserve": approve về sau chỉ đổi status.
	Create(ctx context.Context, req *model.Request, initialStatus model.Status, autoApproved bool) error

	// FindByID trả về request kèm display code
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)

	// ListByAccount - lịch sử rút của user
	ListByAccount(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Request, int, error)

	// List cho admin với filter động
	List(ctx context.Context, filter model.ListFilter) ([]*model.Request, int, error)

	// Approve chuyển pending → completed. Zero rows → ErrInvalidTransition
	// (hoặc ErrRequestNotFound nếu id không tồn tại).
	Approve(ctx context.Context, id, adminID uuid.UUID) (*model.Request, error)

	// RejectWithRefund - MỘT transaction: status update + refund credit
	// + ledger entry. Refund không tăng total_earned (reversal).
	RejectWithRefund(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Request, error)

	// CountPending cho admin digest
	CountPending(ctx context.Context) (int, error)
}

type postgresRepository struct {
	db     *pgxpool.Pool
	ledger ledgerRepo.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, ledger ledgerRepo.Repository) Repository {
	return &postgresRepository{db: db, ledger: ledger}
}

const requestColumns = `id, display_no, account_id, amount_vnd, amount_points, type, details,
	status, reject_reason, auto_approved, reviewed_by, reviewed_at, created_at`

// Create
//
// Transaction:
// 1. DebitTx - conditional, fail ErrInsufficientBalance thì rollback sạch
// 2. INSERT request với details snapshot
// 3. AppendEntryTx ghi audit với reference = request id
func (r *postgresRepository) Create(ctx context.Context, req *model.Request, initialStatus model.Status, autoApproved bool) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		balanceAfter, err := r.ledger.DebitTx(ctx, tx, req.AccountID, req.AmountPoints)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO withdrawal_requests
				(id, account_id, amount_vnd, amount_points, type, details, status, auto_approved, reviewed_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $8 THEN NOW() END, NOW())
			RETURNING display_no, created_at`

		req.Status = initialStatus
		req.AutoApproved = autoApproved
		err = tx.QueryRow(ctx, query,
			req.ID,
			req.AccountID,
			req.AmountVND,
			req.AmountPoints,
			req.Type,
			req.Details,
			req.Status,
			req.AutoApproved,
		).Scan(&req.DisplayNo, &req.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert withdrawal request: %w", err)
		}
		req.DisplayCode = utils.FormatDisplayNo(req.DisplayNo)

		return r.ledger.AppendEntryTx(ctx, tx, &ledgerModel.Entry{
			ID:           uuid.New(),
			AccountID:    req.AccountID,
			EntryType:    ledgerModel.EntryWithdraw,
			Delta:        -req.AmountPoints,
			BalanceAfter: balanceAfter,
			Reference:    req.ID.String(),
		})
	})
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM withdrawal_requests WHERE id = $1`, requestColumns)

	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find withdrawal request: %w", err)
	}

	return req, nil
}

func (r *postgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Request, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawal_requests WHERE account_id = $1`, accountID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count withdrawal requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM withdrawal_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, requestColumns)

	return r.queryList(ctx, query, total, accountID, limit, (page-1)*limit)
}

// List build WHERE động theo filter - cùng pattern với account List
func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Request, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.AccountID != nil {
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", argIndex))
		args = append(args, *filter.AccountID)
		argIndex++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM withdrawal_requests WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count withdrawal requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM withdrawal_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, requestColumns, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	return r.queryList(ctx, query, total, args...)
}

func (r *postgresRepository) queryList(ctx context.Context, query string, total int, args ...interface{}) ([]*model.Request, int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list withdrawal requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan withdrawal request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// Approve - funds đã reserve lúc create nên approve CHỈ đổi status.
// Guard WHERE status='pending' chặn double-review từ hai admin.
func (r *postgresRepository) Approve(ctx context.Context, id, adminID uuid.UUID) (*model.Request, error) {
	query := fmt.Sprintf(`
		UPDATE withdrawal_requests
		SET status = 'completed', reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s`, requestColumns)

	req, err := scanRequest(r.db.QueryRow(ctx, query, id, adminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("approve withdrawal request: %w", err)
	}

	return req, nil
}

// RejectWithRefund
//
// Transaction:
// 1. Status transition với guard pending
// 2. CreditTx hoàn điểm - KHÔNG bump total_earned
// 3. AppendEntryTx ghi entry withdraw_refund
//
// Round-trip property: create rồi reject trả account về đúng số dư
// trước khi tạo request.
func (r *postgresRepository) RejectWithRefund(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Request, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Request, error) {
		query := fmt.Sprintf(`
			UPDATE withdrawal_requests
			SET status = 'rejected', reject_reason = $3, reviewed_by = $2, reviewed_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING %s`, requestColumns)

		req, err := scanRequest(tx.QueryRow(ctx, query, id, adminID, reason))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.classifyTransitionFailure(ctx, id)
			}
			return nil, fmt.Errorf("reject withdrawal request: %w", err)
		}

		balanceAfter, err := r.ledger.CreditTx(ctx, tx, req.AccountID, req.AmountPoints, false)
		if err != nil {
			return nil, err
		}

		err = r.ledger.AppendEntryTx(ctx, tx, &ledgerModel.Entry{
			ID:           uuid.New(),
			AccountID:    req.AccountID,
			EntryType:    ledgerModel.EntryWithdrawRefund,
			Delta:        req.AmountPoints,
			BalanceAfter: balanceAfter,
			Reference:    req.ID.String(),
			Note:         &reason,
		})
		if err != nil {
			return nil, err
		}

		return req, nil
	})
}

func (r *postgresRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending withdrawals: %w", err)
	}
	return count, nil
}

// classifyTransitionFailure phân biệt "không tồn tại" với "đã review"
func (r *postgresRepository) classifyTransitionFailure(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM withdrawal_requests WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("classify transition failure: %w", err)
	}
	if !exists {
		return model.ErrRequestNotFound
	}
	return model.ErrInvalidTransition
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID,           // id
		&req.DisplayNo,    // display_no
		&req.AccountID,    // account_id
		&req.AmountVND,    // amount_vnd
		&req.AmountPoints, // amount_points
		&req.Type,         // type
		&req.Details,      // details (jsonb)
		&req.Status,       // status
		&req.RejectReason, // reject_reason
		&req.AutoApproved, // auto_approved
		&req.ReviewedBy,   // reviewed_by
		&req.ReviewedAt,   // reviewed_at
		&req.CreatedAt,    // created_at
	)
	if err != nil {
		return nil, err
	}
	req.DisplayCode = utils.FormatDisplayNo(req.DisplayNo)
	return &req, nil
}
