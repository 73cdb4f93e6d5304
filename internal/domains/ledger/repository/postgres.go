package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/ledger/model"
	vipModel "diamondnova-backend/internal/domains/vip/model"
	"diamondnova-backend/pkg/database"
	"diamondnova-backend/pkg/logger"
)

// PostgresRepository triển khai Repository interface với PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository tạo instance mới
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// -------------------------------------------------------------------
// TX PRIMITIVES
// -------------------------------------------------------------------

// DebitTx - guard chống âm nằm trong WHERE, không phải trong Go code.
// Hai debit đồng thời trên cùng account sẽ serialize trên row lock;
// cái đến sau thấy balance đã trừ và fail nếu không đủ.
func (r *PostgresRepository) DebitTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    updated_at = NOW()
		WHERE id = $1 AND balance - $2 >= 0
		RETURNING balance
	`

	var balanceAfter int64
	err := tx.QueryRow(ctx, query, accountID, points).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Phân biệt not-found với insufficient
			var exists bool
			if checkErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); checkErr != nil {
				return 0, fmt.Errorf("debit follow-up check: %w", checkErr)
			}
			if !exists {
				return 0, model.ErrAccountNotFound
			}
			return 0, model.ErrInsufficientBalance
		}
		return 0, fmt.Errorf("debit account: %w", err)
	}

	return balanceAfter, nil
}

func (r *PostgresRepository) CreditTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, points int64, bumpTotalEarned bool) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_earned = total_earned + CASE WHEN $3 THEN $2 ELSE 0 END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var balanceAfter int64
	err := tx.QueryRow(ctx, query, accountID, points, bumpTotalEarned).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrAccountNotFound
		}
		return 0, fmt.Errorf("credit account: %w", err)
	}

	return balanceAfter, nil
}

func (r *PostgresRepository) AppendEntryTx(ctx context.Context, tx pgx.Tx, entry *model.Entry) error {
	query := `
		INSERT INTO ledger_entries (
			id, account_id, entry_type, delta, balance_after, reference, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := tx.QueryRow(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.EntryType,
		entry.Delta,
		entry.BalanceAfter,
		entry.Reference,
		entry.Note,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

// -------------------------------------------------------------------
// TASK COMPLETION
// -------------------------------------------------------------------

// CreditTask - toàn bộ quota check + counter reset + increment nằm trong
// MỘT statement. Counters được diễn giải theo last_task_date:
// last_task_date khác hôm nay nghĩa là counter hôm nay bằng 0.
//
// Zero rows affected => quota đã chạm (daily cap hoặc per-gate quota).
func (r *PostgresRepository) CreditTask(ctx context.Context, accountID uuid.UUID, gate string, points int64, dailyCap, gateQuota int, reference string) (*model.TaskCredit, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.TaskCredit, error) {
		query := `
			UPDATE accounts
			SET balance       = balance + $2,
			    total_earned  = total_earned + $2,
			    tasks_today   = CASE WHEN last_task_date = CURRENT_DATE
			                         THEN tasks_today + 1 ELSE 1 END,
			    tasks_week    = CASE WHEN last_task_date >= date_trunc('week', CURRENT_DATE)::date
			                         THEN tasks_week + 1 ELSE 1 END,
			    task_counts   = jsonb_set(
			                        COALESCE(task_counts, '{}'::jsonb),
			                        ARRAY[$3],
			                        to_jsonb(CASE WHEN last_task_date = CURRENT_DATE
			                                      THEN COALESCE((task_counts->>$3)::int, 0)
			                                      ELSE 0 END + 1)
			                    ),
			    last_task_date = CURRENT_DATE,
			    updated_at     = NOW()
			WHERE id = $1
			  AND is_banned = false
			  AND (last_task_date IS DISTINCT FROM CURRENT_DATE OR tasks_today < $4)
			  AND (last_task_date IS DISTINCT FROM CURRENT_DATE
			       OR COALESCE((task_counts->>$3)::int, 0) < $5)
			RETURNING balance, tasks_today, (task_counts->>$3)::int
		`

		var credit model.TaskCredit
		credit.Gate = gate

		err := tx.QueryRow(ctx, query, accountID, points, gate, dailyCap, gateQuota).Scan(
			&credit.BalanceAfter, // balance
			&credit.TasksToday,   // tasks_today
			&credit.GateCount,    // task_counts->gate
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.classifyTaskFailure(ctx, tx, accountID)
			}
			return nil, fmt.Errorf("credit task: %w", err)
		}

		entry := &model.Entry{
			AccountID:    accountID,
			EntryType:    model.EntryTask,
			Delta:        points,
			BalanceAfter: credit.BalanceAfter,
			Reference:    reference,
		}
		if err := r.AppendEntryTx(ctx, tx, entry); err != nil {
			return nil, err
		}
		credit.Entry = entry

		return &credit, nil
	})
}

// classifyTaskFailure đọc lại account để trả về đúng sentinel error
func (r *PostgresRepository) classifyTaskFailure(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) error {
	var isBanned bool
	err := tx.QueryRow(ctx, `SELECT is_banned FROM accounts WHERE id = $1`, accountID).Scan(&isBanned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAccountNotFound
		}
		return fmt.Errorf("classify task failure: %w", err)
	}
	if isBanned {
		return model.ErrAccountBanned
	}
	return model.ErrQuotaExceeded
}

// -------------------------------------------------------------------
// GIFTCODE REDEMPTION
// -------------------------------------------------------------------

// RedeemGiftcode claim một slot trên giftcode row trước, sau đó insert
// redemption và credit. Unique constraint (giftcode_code, account_id)
// là guard once-per-account: hai request đồng thời cùng account thì
// một cái nhận unique violation và cả transaction rollback - slot đã
// claim cũng được trả lại.
func (r *PostgresRepository) RedeemGiftcode(ctx context.Context, accountID uuid.UUID, code string) (*model.Entry, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Entry, error) {
		// Step 1: claim slot - current_uses < max_uses check và increment
		// trong cùng statement
		claimQuery := `
			UPDATE giftcodes
			SET current_uses = current_uses + 1
			WHERE code = UPPER($1)
			  AND is_active = true
			  AND (expires_at IS NULL OR expires_at > NOW())
			  AND current_uses < max_uses
			RETURNING amount
		`

		var amount int64
		err := tx.QueryRow(ctx, claimQuery, code).Scan(&amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.classifyGiftcodeFailure(ctx, tx, code)
			}
			return nil, fmt.Errorf("claim giftcode slot: %w", err)
		}

		// Step 2: redemption row - unique (giftcode_code, account_id)
		insertQuery := `
			INSERT INTO giftcode_redemptions (giftcode_code, account_id, amount, redeemed_at)
			VALUES (UPPER($1), $2, $3, NOW())
		`
		if _, err := tx.Exec(ctx, insertQuery, code, accountID, amount); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return nil, model.ErrCodeAlreadyUsed
			}
			return nil, fmt.Errorf("insert redemption: %w", err)
		}

		// Step 3: credit balance + total_giftcode_earned
		creditQuery := `
			UPDATE accounts
			SET balance = balance + $2,
			    total_earned = total_earned + $2,
			    total_giftcode_earned = total_giftcode_earned + $2,
			    updated_at = NOW()
			WHERE id = $1 AND is_banned = false
			RETURNING balance
		`

		var balanceAfter int64
		err = tx.QueryRow(ctx, creditQuery, accountID, amount).Scan(&balanceAfter)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.classifyAccountFailure(ctx, tx, accountID)
			}
			return nil, fmt.Errorf("credit giftcode: %w", err)
		}

		// Step 4: audit entry trong cùng transaction
		entry := &model.Entry{
			AccountID:    accountID,
			EntryType:    model.EntryGiftcode,
			Delta:        amount,
			BalanceAfter: balanceAfter,
			Reference:    code,
		}
		if err := r.AppendEntryTx(ctx, tx, entry); err != nil {
			return nil, err
		}

		return entry, nil
	})
}

// classifyGiftcodeFailure phân biệt NotFound / Expired / Exhausted
// sau khi claim trả về zero rows
func (r *PostgresRepository) classifyGiftcodeFailure(ctx context.Context, tx pgx.Tx, code string) error {
	var isActive bool
	var expiresAt *time.Time
	var currentUses, maxUses int

	query := `
		SELECT is_active, expires_at, current_uses, max_uses
		FROM giftcodes
		WHERE code = UPPER($1)
	`
	err := tx.QueryRow(ctx, query, code).Scan(&isActive, &expiresAt, &currentUses, &maxUses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCodeNotFound
		}
		return fmt.Errorf("classify giftcode failure: %w", err)
	}

	if !isActive || (expiresAt != nil && expiresAt.Before(time.Now())) {
		return model.ErrCodeExpired
	}
	if currentUses >= maxUses {
		return model.ErrCodeExhausted
	}

	// Race hẹp: code vừa được kích hoạt lại giữa hai statement
	return model.ErrConcurrentModification
}

func (r *PostgresRepository) classifyAccountFailure(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) error {
	var isBanned bool
	err := tx.QueryRow(ctx, `SELECT is_banned FROM accounts WHERE id = $1`, accountID).Scan(&isBanned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAccountNotFound
		}
		return fmt.Errorf("classify account failure: %w", err)
	}
	if isBanned {
		return model.ErrAccountBanned
	}
	return model.ErrConcurrentModification
}

// -------------------------------------------------------------------
// REFERRAL / ADMIN / VIP
// -------------------------------------------------------------------

func (r *PostgresRepository) CreditReferralTx(ctx context.Context, tx pgx.Tx, referrerID uuid.UUID, amount int64, referredID uuid.UUID) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_earned = total_earned + $2,
		    referral_bonus = referral_bonus + $2,
		    referral_count = referral_count + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var balanceAfter int64
	err := tx.QueryRow(ctx, query, referrerID, amount).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAccountNotFound
		}
		return fmt.Errorf("credit referral: %w", err)
	}

	entry := &model.Entry{
		AccountID:    referrerID,
		EntryType:    model.EntryReferral,
		Delta:        amount,
		BalanceAfter: balanceAfter,
		Reference:    referredID.String(),
	}
	return r.AppendEntryTx(ctx, tx, entry)
}

// AdminAdjust - clamp tại 0 là hành vi được chọn thay vì fail:
// admin trừ quá số dư thì kéo về 0, không bao giờ âm.
func (r *PostgresRepository) AdminAdjust(ctx context.Context, accountID uuid.UUID, delta int64, adminID uuid.UUID, note string) (*model.Entry, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Entry, error) {
		query := `
			UPDATE accounts
			SET balance = GREATEST(balance + $2, 0),
			    total_earned = total_earned + GREATEST($2, 0),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING balance
		`

		var balanceAfter int64
		err := tx.QueryRow(ctx, query, accountID, delta).Scan(&balanceAfter)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrAccountNotFound
			}
			return nil, fmt.Errorf("admin adjust: %w", err)
		}

		noteVal := note
		entry := &model.Entry{
			AccountID:    accountID,
			EntryType:    model.EntryAdminAdjust,
			Delta:        delta,
			BalanceAfter: balanceAfter,
			Reference:    adminID.String(),
			Note:         &noteVal,
		}
		if err := r.AppendEntryTx(ctx, tx, entry); err != nil {
			return nil, err
		}

		return entry, nil
	})
}

// DebitForVip - debit và grant trong một transaction. Gia hạn cộng dồn:
// nếu VIP còn hạn thì duration mới tính từ vip_until hiện tại. Mua gói
// thấp hơn tier đang sống chỉ cộng ngày, không downgrade tier.
func (r *PostgresRepository) DebitForVip(ctx context.Context, accountID uuid.UUID, points int64, tier string, days int, reference string) (*model.Entry, *model.VipGrant, error) {
	type result struct {
		entry *model.Entry
		grant *model.VipGrant
	}

	res, err := database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*result, error) {
		balanceAfter, err := r.DebitTx(ctx, tx, accountID, points)
		if err != nil {
			return nil, err
		}

		// DebitTx đã lock row; đọc tier hiện tại để không downgrade
		// khi mua gói thấp hơn tier đang sống
		var currentTier string
		var currentUntil *time.Time
		readQuery := `SELECT vip_tier, vip_until FROM accounts WHERE id = $1`
		if err := tx.QueryRow(ctx, readQuery, accountID).Scan(&currentTier, &currentUntil); err != nil {
			return nil, fmt.Errorf("read current vip tier: %w", err)
		}
		grantTier := vipModel.ResolveGrantTier(currentTier, currentUntil, tier, time.Now())

		grantQuery := `
			UPDATE accounts
			SET vip_tier = $2,
			    vip_until = GREATEST(COALESCE(vip_until, NOW()), NOW()) + make_interval(days => $3),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING vip_until
		`

		var vipUntil time.Time
		if err := tx.QueryRow(ctx, grantQuery, accountID, grantTier, days).Scan(&vipUntil); err != nil {
			return nil, fmt.Errorf("grant vip: %w", err)
		}

		entry := &model.Entry{
			AccountID:    accountID,
			EntryType:    model.EntryVipPurchase,
			Delta:        -points,
			BalanceAfter: balanceAfter,
			Reference:    reference,
		}
		if err := r.AppendEntryTx(ctx, tx, entry); err != nil {
			return nil, err
		}

		return &result{
			entry: entry,
			grant: &model.VipGrant{Tier: grantTier, VipUntil: vipUntil},
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return res.entry, res.grant, nil
}

// -------------------------------------------------------------------
// READS
// -------------------------------------------------------------------

func (r *PostgresRepository) ListEntries(ctx context.Context, accountID uuid.UUID, page, limit int) ([]*model.Entry, int, error) {
	offset := (page - 1) * limit

	query := `
		SELECT id, account_id, entry_type, delta, balance_after, reference, note, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		logger.Error("list ledger entries", err)
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		var e model.Entry
		err := rows.Scan(
			&e.ID,           // id
			&e.AccountID,    // account_id
			&e.EntryType,    // entry_type
			&e.Delta,        // delta
			&e.BalanceAfter, // balance_after
			&e.Reference,    // reference
			&e.Note,         // note (nullable)
			&e.CreatedAt,    // created_at
		)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	return entries, total, nil
}

func (r *PostgresRepository) IsBanned(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var isBanned bool
	err := r.db.QueryRow(ctx, `SELECT is_banned FROM accounts WHERE id = $1`, accountID).Scan(&isBanned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, model.ErrAccountNotFound
		}
		return false, fmt.Errorf("check banned: %w", err)
	}
	return isBanned, nil
}
