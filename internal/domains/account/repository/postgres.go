package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/account"
	"diamondnova-backend/internal/domains/account/model"
	ledgerRepo "diamondnova-backend/internal/domains/ledger/repository"
	"diamondnova-backend/pkg/database"
)

const uniqueViolation = "23505"

const accountColumns = `
	id, email, password_hash, full_name, phone, role,
	balance, total_earned, total_giftcode_earned,
	tasks_today, tasks_week, task_counts, last_task_date,
	is_banned, ban_reason, banned_at, security_score,
	vip_tier, vip_until,
	referral_code, referred_by, referral_count, referral_bonus,
	created_at, updated_at
`

// PostgresRepository triển khai account.Repository với PostgreSQL.
// Nhận ledger repository để credit referral bonus trong cùng transaction
// với INSERT account - balance mutation vẫn chỉ đi qua ledger code.
type PostgresRepository struct {
	db     *pgxpool.Pool
	ledger ledgerRepo.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, ledger ledgerRepo.Repository) account.Repository {
	return &PostgresRepository{db: db, ledger: ledger}
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

// Create - INSERT account và (nếu có) referral credit là MỘT transaction:
// account được tạo kèm bonus cho referrer, hoặc không gì cả.
func (r *PostgresRepository) Create(ctx context.Context, acc *model.Account, referrerID *uuid.UUID, referralBonus int64) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO accounts (
				id, email, password_hash, full_name, phone, role,
				balance, total_earned, total_giftcode_earned,
				tasks_today, tasks_week, task_counts,
				is_banned, security_score,
				vip_tier, referral_code, referred_by,
				referral_count, referral_bonus,
				created_at, updated_at
			) VALUES (
				$1, LOWER($2), $3, $4, $5, $6,
				0, 0, 0,
				0, 0, '{}'::jsonb,
				false, $7,
				'none', $8, $9,
				0, 0,
				NOW(), NOW()
			)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRow(ctx, query,
			acc.ID,
			acc.Email,
			acc.PasswordHash,
			acc.FullName,
			acc.Phone,
			acc.Role,
			acc.SecurityScore,
			acc.ReferralCode,
			acc.ReferredBy,
		).Scan(&acc.CreatedAt, &acc.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return account.ErrEmailAlreadyExists
			}
			return fmt.Errorf("create account: %w", err)
		}

		// Referral bonus - gọi đúng một lần, trong cùng transaction
		if referrerID != nil && referralBonus > 0 {
			if err := r.ledger.CreditReferralTx(ctx, tx, *referrerID, referralBonus, acc.ID); err != nil {
				return fmt.Errorf("credit referral bonus: %w", err)
			}
		}

		return nil
	})
}

func (r *PostgresRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool, reason string) error {
	query := `
		UPDATE accounts
		SET is_banned = $2,
		    ban_reason = CASE WHEN $2 THEN $3 ELSE NULL END,
		    banned_at = CASE WHEN $2 THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, banned, reason)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) SetSecurityScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET security_score = $2, updated_at = NOW() WHERE id = $1`,
		id, score)
	if err != nil {
		return fmt.Errorf("set security score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = LOWER($1)`, accountColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) FindByReferralCode(ctx context.Context, code string) (*model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE referral_code = UPPER($1)`, accountColumns)
	acc, err := r.scanOne(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, account.ErrReferralNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

// List lấy danh sách account với filter cho admin dashboard
//
// Business Logic:
// - Search: email hoặc full_name, case-insensitive
// - Banned filter: nil = tất cả
func (r *PostgresRepository) List(ctx context.Context, req account.ListAccountsRequest) ([]*model.Account, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit

	// Build WHERE clause động
	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(email LIKE $%d OR LOWER(full_name) LIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+strings.ToLower(req.Search)+"%")
		argIndex++
	}

	if req.Banned != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_banned = $%d", argIndex))
		args = append(args, *req.Banned)
		argIndex++
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, accountColumns, whereSQL, argIndex, argIndex+1)

	args = append(args, req.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, acc)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM accounts %s", whereSQL)
	countArgs := args[:len(args)-2] // Loại bỏ LIMIT và OFFSET

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *PostgresRepository) Leaderboard(ctx context.Context, limit int) ([]*model.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE is_banned = false
		ORDER BY total_earned DESC
		LIMIT $1
	`, accountColumns)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acc, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

// NormalizeTaskCounters - reporting hygiene cho các query tổng hợp đọc
// thẳng cột tasks_today. Đường credit không cần job này.
func (r *PostgresRepository) NormalizeTaskCounters(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET tasks_today = 0,
		    tasks_week = CASE
		        WHEN date_trunc('week', last_task_date) < date_trunc('week', CURRENT_DATE) THEN 0
		        ELSE tasks_week
		    END
		WHERE last_task_date < CURRENT_DATE AND tasks_today > 0`)
	if err != nil {
		return 0, fmt.Errorf("normalize task counters: %w", err)
	}

	return tag.RowsAffected(), nil
}

// -------------------------------------------------------------------
// SCAN HELPERS
// -------------------------------------------------------------------

func (r *PostgresRepository) scanOne(row pgx.Row) (*model.Account, error) {
	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (r *PostgresRepository) scanRow(rows pgx.Rows) (*model.Account, error) {
	return scanAccount(rows)
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,                  // id
		&a.Email,               // email
		&a.PasswordHash,        // password_hash
		&a.FullName,            // full_name
		&a.Phone,               // phone (nullable)
		&a.Role,                // role
		&a.Balance,             // balance
		&a.TotalEarned,         // total_earned
		&a.TotalGiftcodeEarned, // total_giftcode_earned
		&a.TasksToday,          // tasks_today
		&a.TasksWeek,           // tasks_week
		&a.TaskCounts,          // task_counts (jsonb)
		&a.LastTaskDate,        // last_task_date (nullable)
		&a.IsBanned,            // is_banned
		&a.BanReason,           // ban_reason (nullable)
		&a.BannedAt,            // banned_at (nullable)
		&a.SecurityScore,       // security_score
		&a.VipTier,             // vip_tier
		&a.VipUntil,            // vip_until (nullable)
		&a.ReferralCode,        // referral_code
		&a.ReferredBy,          // referred_by (nullable)
		&a.ReferralCount,       // referral_count
		&a.ReferralBonus,       // referral_bonus
		&a.CreatedAt,           // created_at
		&a.UpdatedAt,           // updated_at
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
