package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/task/model"
)

// Repository định nghĩa data access cho gate registry
type Repository interface {
	// FindByName tìm gate theo tên (case-sensitive, tên là PK)
	FindByName(ctx context.Context, name string) (*model.Gate, error)

	// ListActive trả về các gate đang mở, cho user
	ListActive(ctx context.Context) ([]*model.Gate, error)

	// ListAll trả về toàn bộ registry, cho admin
	ListAll(ctx context.Context) ([]*model.Gate, error)

	// Create thêm gate mới; trùng tên → ErrGateExists
	Create(ctx context.Context, gate *model.Gate) error

	// Update sửa gate; không tồn tại → ErrGateNotFound
	Update(ctx context.Context, gate *model.Gate) error

	// SetActive bật/tắt gate
	SetActive(ctx context.Context, name string, active bool) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const gateColumns = `name, reward_points, daily_quota, is_active, redirect_url, created_at`

func (r *postgresRepository) FindByName(ctx context.Context, name string) (*model.Gate, error) {
	query := fmt.Sprintf(`SELECT %s FROM task_gates WHERE name = $1`, gateColumns)

	gate, err := scanGate(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGateNotFound
		}
		return nil, fmt.Errorf("find gate: %w", err)
	}

	return gate, nil
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]*model.Gate, error) {
	query := fmt.Sprintf(`SELECT %s FROM task_gates WHERE is_active = true ORDER BY reward_points DESC`, gateColumns)
	return r.list(ctx, query)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]*model.Gate, error) {
	query := fmt.Sprintf(`SELECT %s FROM task_gates ORDER BY created_at`, gateColumns)
	return r.list(ctx, query)
}

func (r *postgresRepository) list(ctx context.Context, query string) ([]*model.Gate, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gates: %w", err)
	}
	defer rows.Close()

	var gates []*model.Gate
	for rows.Next() {
		gate, err := scanGate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gate: %w", err)
		}
		gates = append(gates, gate)
	}

	return gates, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, gate *model.Gate) error {
	query := `
		INSERT INTO task_gates (name, reward_points, daily_quota, is_active, redirect_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := r.db.Exec(ctx, query,
		gate.Name,
		gate.RewardPoints,
		gate.DailyQuota,
		gate.IsActive,
		gate.RedirectURL,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrGateExists
		}
		return fmt.Errorf("create gate: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, gate *model.Gate) error {
	query := `
		UPDATE task_gates
		SET reward_points = $2, daily_quota = $3, is_active = $4, redirect_url = $5
		WHERE name = $1`

	tag, err := r.db.Exec(ctx, query,
		gate.Name,
		gate.RewardPoints,
		gate.DailyQuota,
		gate.IsActive,
		gate.RedirectURL,
	)
	if err != nil {
		return fmt.Errorf("update gate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGateNotFound
	}

	return nil
}

func (r *postgresRepository) SetActive(ctx context.Context, name string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE task_gates SET is_active = $2 WHERE name = $1`, name, active)
	if err != nil {
		return fmt.Errorf("set gate active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGateNotFound
	}

	return nil
}

// scanGate map một row vào model.Gate
func scanGate(row pgx.Row) (*model.Gate, error) {
	var g model.Gate
	err := row.Scan(
		&g.Name,         // name
		&g.RewardPoints, // reward_points
		&g.DailyQuota,   // daily_quota
		&g.IsActive,     // is_active
		&g.RedirectURL,  // redirect_url
		&g.CreatedAt,    // created_at
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
