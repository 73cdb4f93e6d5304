package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/giftcode/model"
)

// Repository là data access cho quản trị giftcode. Đường redeem
// KHÔNG đi qua đây - redemption là một ledger mutation và thuộc về
// ledger repository để giữ invariant "một đường ghi duy nhất".
type Repository interface {
	Create(ctx context.Context, gc *model.Giftcode) error
	FindByCode(ctx context.Context, code string) (*model.Giftcode, error)
	List(ctx context.Context, page, limit int) ([]*model.GiftcodeStats, int, error)
	Update(ctx context.Context, code string, req model.UpdateGiftcodeRequest) (*model.Giftcode, error)
	SetActive(ctx context.Context, code string, active bool) error
	ListRedemptions(ctx context.Context, code string, page, limit int) ([]*model.Redemption, int, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const giftcodeColumns = `code, amount, max_uses, current_uses, is_active, created_by, created_at, expires_at`

func (r *postgresRepository) Create(ctx context.Context, gc *model.Giftcode) error {
	query := `
		INSERT INTO giftcodes (code, amount, max_uses, current_uses, is_active, created_by, created_at, expires_at)
		VALUES (UPPER($1), $2, $3, 0, true, $4, NOW(), $5)`

	_, err := r.db.Exec(ctx, query, gc.Code, gc.Amount, gc.MaxUses, gc.CreatedBy, gc.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrGiftcodeExists
		}
		return fmt.Errorf("create giftcode: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByCode(ctx context.Context, code string) (*model.Giftcode, error) {
	query := fmt.Sprintf(`SELECT %s FROM giftcodes WHERE code = UPPER($1)`, giftcodeColumns)

	gc, err := scanGiftcode(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGiftcodeNotFound
		}
		return nil, fmt.Errorf("find giftcode: %w", err)
	}

	return gc, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]*model.GiftcodeStats, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM giftcodes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count giftcodes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM giftcodes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, giftcodeColumns)

	rows, err := r.db.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list giftcodes: %w", err)
	}
	defer rows.Close()

	var stats []*model.GiftcodeStats
	for rows.Next() {
		gc, err := scanGiftcode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan giftcode: %w", err)
		}
		stats = append(stats, &model.GiftcodeStats{
			Giftcode:     *gc,
			TotalPaidOut: int64(gc.CurrentUses) * gc.Amount,
			Remaining:    gc.MaxUses - gc.CurrentUses,
		})
	}

	return stats, total, rows.Err()
}

// Update build SET clause động theo field có mặt trong request.
// max_uses không được hạ xuống dưới current_uses - check constraint
// của bảng sẽ chặn, ở đây guard sớm bằng GREATEST.
func (r *postgresRepository) Update(ctx context.Context, code string, req model.UpdateGiftcodeRequest) (*model.Giftcode, error) {
	setClauses := []string{}
	args := []interface{}{code}
	argIndex := 2

	if req.Amount != nil {
		setClauses = append(setClauses, fmt.Sprintf("amount = $%d", argIndex))
		args = append(args, *req.Amount)
		argIndex++
	}
	if req.MaxUses != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_uses = GREATEST($%d, current_uses)", argIndex))
		args = append(args, *req.MaxUses)
		argIndex++
	}
	if req.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *req.IsActive)
		argIndex++
	}
	if req.ExpiresAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("expires_at = $%d", argIndex))
		args = append(args, *req.ExpiresAt)
		argIndex++
	}

	if len(setClauses) == 0 {
		return r.FindByCode(ctx, code)
	}

	query := fmt.Sprintf(`
		UPDATE giftcodes SET %s
		WHERE code = UPPER($1)
		RETURNING %s`, strings.Join(setClauses, ", "), giftcodeColumns)

	gc, err := scanGiftcode(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGiftcodeNotFound
		}
		return nil, fmt.Errorf("update giftcode: %w", err)
	}

	return gc, nil
}

func (r *postgresRepository) SetActive(ctx context.Context, code string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE giftcodes SET is_active = $2 WHERE code = UPPER($1)`, code, active)
	if err != nil {
		return fmt.Errorf("set giftcode active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGiftcodeNotFound
	}

	return nil
}

func (r *postgresRepository) ListRedemptions(ctx context.Context, code string, page, limit int) ([]*model.Redemption, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM giftcode_redemptions WHERE giftcode_code = UPPER($1)`, code,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count redemptions: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT giftcode_code, account_id, amount, redeemed_at
		FROM giftcode_redemptions
		WHERE giftcode_code = UPPER($1)
		ORDER BY redeemed_at DESC
		LIMIT $2 OFFSET $3`, code, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []*model.Redemption
	for rows.Next() {
		var rd model.Redemption
		if err := rows.Scan(&rd.GiftcodeCode, &rd.AccountID, &rd.Amount, &rd.RedeemedAt); err != nil {
			return nil, 0, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, &rd)
	}

	return redemptions, total, rows.Err()
}

func scanGiftcode(row pgx.Row) (*model.Giftcode, error) {
	var gc model.Giftcode
	err := row.Scan(
		&gc.Code,        // code
		&gc.Amount,      // amount
		&gc.MaxUses,     // max_uses
		&gc.CurrentUses, // current_uses
		&gc.IsActive,    // is_active
		&gc.CreatedBy,   // created_by
		&gc.CreatedAt,   // created_at
		&gc.ExpiresAt,   // expires_at
	)
	if err != nil {
		return nil, err
	}
	return &gc, nil
}
