package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/internal/shared/utils"
	"diamondnova-backend/pkg/database"
)

// Repository - data access cho VIP deposit requests
type Repository interface {
	// Create insert request pending và sinh transfer_content từ
	// display_no trong cùng transaction
	Create(ctx context.Context, req *model.DepositRequest) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.DepositRequest, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.DepositRequest, int, error)
	List(ctx context.Context, filter model.DepositListFilter) ([]*model.DepositRequest, int, error)

	// SetBillURL gắn URL ảnh bill - chỉ khi request pending và thuộc về account
	SetBillURL(ctx context.Context, id, accountID uuid.UUID, url string) error

	// Approve - MỘT transaction: status transition + VIP grant.
	// Gia hạn cộng dồn từ max(now, vip_until).
	Approve(ctx context.Context, id, adminID uuid.UUID, tier string, days int) (*model.DepositRequest, time.Time, error)

	// Reject chỉ đổi status - không có balance effect để hoàn
	Reject(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error)

	// ListLapsedBetween tìm các account có VIP hết hạn trong cửa sổ -
	// worker dùng để gửi thông báo, không mutate gì (is_vip là derived)
	ListLapsedBetween(ctx context.Context, from, to time.Time) ([]LapsedVip, error)
}

// LapsedVip - account vừa rơi khỏi VIP trong cửa sổ quét
type LapsedVip struct {
	AccountID uuid.UUID
	Tier      string
	VipUntil  time.Time
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const depositColumns = `id, display_no, account_id, vip_tier, amount_vnd, bank_details,
	transfer_content, bill_url, status, reviewed_by, reviewed_at, created_at`

// Create - transfer_content cần display_no (bigserial) nên sinh sau
// insert, trong cùng transaction để tag không bao giờ thiếu.
func (r *postgresRepository) Create(ctx context.Context, req *model.DepositRequest) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		insertQuery := `
			INSERT INTO vip_deposit_requests
				(id, account_id, vip_tier, amount_vnd, bank_details, transfer_content, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $1::text, 'pending', NOW())
			RETURNING display_no, created_at`

		err := tx.QueryRow(ctx, insertQuery,
			req.ID,
			req.AccountID,
			req.VipTier,
			req.AmountVND,
			req.BankDetails,
		).Scan(&req.DisplayNo, &req.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert deposit request: %w", err)
		}

		req.TransferContent = fmt.Sprintf("NOVA%d", req.DisplayNo)
		req.Status = model.DepositPending
		req.DisplayCode = utils.FormatDisplayNo(req.DisplayNo)

		_, err = tx.Exec(ctx,
			`UPDATE vip_deposit_requests SET transfer_content = $2 WHERE id = $1`,
			req.ID, req.TransferContent)
		if err != nil {
			return fmt.Errorf("set transfer content: %w", err)
		}

		return nil
	})
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DepositRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM vip_deposit_requests WHERE id = $1`, depositColumns)

	req, err := scanDeposit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDepositNotFound
		}
		return nil, fmt.Errorf("find deposit request: %w", err)
	}

	return req, nil
}

func (r *postgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.DepositRequest, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM vip_deposit_requests WHERE account_id = $1`, accountID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deposit requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM vip_deposit_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, depositColumns)

	return r.queryList(ctx, query, total, accountID, limit, (page-1)*limit)
}

func (r *postgresRepository) List(ctx context.Context, filter model.DepositListFilter) ([]*model.DepositRequest, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM vip_deposit_requests WHERE %s`, where), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deposit requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM vip_deposit_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, depositColumns, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	return r.queryList(ctx, query, total, args...)
}

func (r *postgresRepository) queryList(ctx context.Context, query string, total int, args ...interface{}) ([]*model.DepositRequest, int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deposit requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.DepositRequest
	for rows.Next() {
		req, err := scanDeposit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan deposit request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

func (r *postgresRepository) SetBillURL(ctx context.Context, id, accountID uuid.UUID, url string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vip_deposit_requests
		SET bill_url = $3
		WHERE id = $1 AND account_id = $2 AND status = 'pending'`,
		id, accountID, url)
	if err != nil {
		return fmt.Errorf("set bill url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyBillFailure(ctx, id, accountID)
	}

	return nil
}

// Approve
//
// Transaction:
// 1. Status transition với guard pending
// 2. Grant VIP: tier mới + gia hạn cộng dồn từ max(now, vip_until)
//
// Hai admin approve cùng lúc: guard SQL đảm bảo chỉ một transition
// thành công nên VIP chỉ được grant đúng một lần.
func (r *postgresRepository) Approve(ctx context.Context, id, adminID uuid.UUID, tier string, days int) (*model.DepositRequest, time.Time, error) {
	type result struct {
		req      *model.DepositRequest
		vipUntil time.Time
	}

	res, err := database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*result, error) {
		transitionQuery := fmt.Sprintf(`
			UPDATE vip_deposit_requests
			SET status = 'completed', reviewed_by = $2, reviewed_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING %s`, depositColumns)

		req, err := scanDeposit(tx.QueryRow(ctx, transitionQuery, id, adminID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.classifyTransitionFailure(ctx, id)
			}
			return nil, fmt.Errorf("approve deposit request: %w", err)
		}

		// Lock account row để đọc tier hiện tại - grant gói thấp hơn
		// tier đang sống chỉ cộng ngày, không được downgrade
		var currentTier string
		var currentUntil *time.Time
		lockQuery := `SELECT vip_tier, vip_until FROM accounts WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockQuery, req.AccountID).Scan(&currentTier, &currentUntil); err != nil {
			return nil, fmt.Errorf("lock account for vip grant: %w", err)
		}
		grantTier := model.ResolveGrantTier(currentTier, currentUntil, tier, time.Now())

		grantQuery := `
			UPDATE accounts
			SET vip_tier = $2,
			    vip_until = GREATEST(COALESCE(vip_until, NOW()), NOW()) + make_interval(days => $3),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING vip_until`

		var vipUntil time.Time
		if err := tx.QueryRow(ctx, grantQuery, req.AccountID, grantTier, days).Scan(&vipUntil); err != nil {
			return nil, fmt.Errorf("grant vip: %w", err)
		}

		return &result{req: req, vipUntil: vipUntil}, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	return res.req, res.vipUntil, nil
}

func (r *postgresRepository) Reject(ctx context.Context, id, adminID uuid.UUID) (*model.DepositRequest, error) {
	query := fmt.Sprintf(`
		UPDATE vip_deposit_requests
		SET status = 'rejected', reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s`, depositColumns)

	req, err := scanDeposit(r.db.QueryRow(ctx, query, id, adminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("reject deposit request: %w", err)
	}

	return req, nil
}

func (r *postgresRepository) ListLapsedBetween(ctx context.Context, from, to time.Time) ([]LapsedVip, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, vip_tier, vip_until
		FROM accounts
		WHERE vip_until >= $1 AND vip_until < $2 AND is_banned = false`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list lapsed vip: %w", err)
	}
	defer rows.Close()

	var lapsed []LapsedVip
	for rows.Next() {
		var l LapsedVip
		if err := rows.Scan(&l.AccountID, &l.Tier, &l.VipUntil); err != nil {
			return nil, fmt.Errorf("scan lapsed vip: %w", err)
		}
		lapsed = append(lapsed, l)
	}

	return lapsed, rows.Err()
}

func (r *postgresRepository) classifyTransitionFailure(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM vip_deposit_requests WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("classify transition failure: %w", err)
	}
	if !exists {
		return model.ErrDepositNotFound
	}
	return model.ErrDepositReviewed
}

func (r *postgresRepository) classifyBillFailure(ctx context.Context, id, accountID uuid.UUID) error {
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT status FROM vip_deposit_requests WHERE id = $1 AND account_id = $2`, id, accountID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrDepositNotFound
	}
	if err != nil {
		return fmt.Errorf("classify bill failure: %w", err)
	}
	return model.ErrDepositNotPending
}

func scanDeposit(row pgx.Row) (*model.DepositRequest, error) {
	var req model.DepositRequest
	err := row.Scan(
		&req.ID,              // id
		&req.DisplayNo,       // display_no
		&req.AccountID,       // account_id
		&req.VipTier,         // vip_tier
		&req.AmountVND,       // amount_vnd
		&req.BankDetails,     // bank_details (jsonb)
		&req.TransferContent, // transfer_content
		&req.BillURL,         // bill_url
		&req.Status,          // status
		&req.ReviewedBy,      // reviewed_by
		&req.ReviewedAt,      // reviewed_at
		&req.CreatedAt,       // created_at
	)
	if err != nil {
		return nil, err
	}
	req.DisplayCode = utils.FormatDisplayNo(req.DisplayNo)
	return &req, nil
}
