package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"diamondnova-backend/internal/domains/notification/model"
)

// Repository - data access cho inbox, announcements, ad banners
type Repository interface {
	// Inbox
	Insert(ctx context.Context, n *model.Notification) error
	InsertForAdmins(ctx context.Context, title, body string) (int, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, page, limit int) ([]*model.Notification, int, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error)
	DeleteOldRead(ctx context.Context, olderThan time.Duration) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)

	// Announcements
	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
	UpdateAnnouncement(ctx context.Context, a *model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
	FindAnnouncement(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*model.Announcement, error)

	// Ad banners
	CreateBanner(ctx context.Context, b *model.AdBanner) error
	UpdateBanner(ctx context.Context, b *model.AdBanner) error
	DeleteBanner(ctx context.Context, id uuid.UUID) error
	FindBanner(ctx context.Context, id uuid.UUID) (*model.AdBanner, error)
	ListBanners(ctx context.Context, position string, activeOnly bool) ([]*model.AdBanner, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// ========================================
// INBOX
// ========================================

func (r *postgresRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, account_id, title, body, is_read, created_at, expires_at)
		VALUES ($1, $2, $3, $4, false, NOW(), $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, n.ID, n.AccountID, n.Title, n.Body, n.ExpiresAt).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// InsertForAdmins fan-out một thông báo cho mọi admin đang hoạt động
func (r *postgresRepository) InsertForAdmins(ctx context.Context, title, body string) (int, error) {
	query := `
		INSERT INTO notifications (id, account_id, title, body, is_read, created_at)
		SELECT gen_random_uuid(), id, $1, $2, false, NOW()
		FROM accounts
		WHERE role = 'admin' AND is_banned = false`

	tag, err := r.db.Exec(ctx, query, title, body)
	if err != nil {
		return 0, fmt.Errorf("insert admin notifications: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *postgresRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, page, limit int) ([]*model.Notification, int, error) {
	where := `account_id = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	if unreadOnly {
		where += ` AND is_read = false`
	}

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM notifications WHERE %s`, where), accountID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, account_id, title, body, is_read, created_at, expires_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, where)

	rows, err := r.db.Query(ctx, query, accountID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, total, rows.Err()
}

func (r *postgresRepository) CountUnread(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE account_id = $1 AND is_read = false
		  AND (expires_at IS NULL OR expires_at > NOW())`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}

func (r *postgresRepository) MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE account_id = $1 AND is_read = false`, accountID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) DeleteOldRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE is_read = true AND created_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("delete old read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ========================================
// ANNOUNCEMENTS
// ========================================

func (r *postgresRepository) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	query := `
		INSERT INTO announcements (id, title, body, is_active, is_pinned, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, a.ID, a.Title, a.Body, a.IsActive, a.IsPinned).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateAnnouncement(ctx context.Context, a *model.Announcement) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE announcements
		SET title = $2, body = $3, is_active = $4, is_pinned = $5
		WHERE id = $1`,
		a.ID, a.Title, a.Body, a.IsActive, a.IsPinned)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAnnouncementNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAnnouncementNotFound
	}
	return nil
}

func (r *postgresRepository) FindAnnouncement(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.QueryRow(ctx, `
		SELECT id, title, body, is_active, is_pinned, created_at
		FROM announcements WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Body, &a.IsActive, &a.IsPinned, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*model.Announcement, error) {
	query := `
		SELECT id, title, body, is_active, is_pinned, created_at
		FROM announcements`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY is_pinned DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.IsActive, &a.IsPinned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, &a)
	}

	return announcements, rows.Err()
}

// ========================================
// AD BANNERS
// ========================================

const bannerColumns = `id, title, image_url, target_url, position, is_active, starts_at, ends_at`

func (r *postgresRepository) CreateBanner(ctx context.Context, b *model.AdBanner) error {
	query := `
		INSERT INTO ad_banners (id, title, image_url, target_url, position, is_active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.ImageURL, b.TargetURL, b.Position, b.IsActive, b.StartsAt, b.EndsAt)
	if err != nil {
		return fmt.Errorf("create banner: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateBanner(ctx context.Context, b *model.AdBanner) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ad_banners
		SET title = $2, image_url = $3, target_url = $4, position = $5, is_active = $6, starts_at = $7, ends_at = $8
		WHERE id = $1`,
		b.ID, b.Title, b.ImageURL, b.TargetURL, b.Position, b.IsActive, b.StartsAt, b.EndsAt)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBannerNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ad_banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBannerNotFound
	}
	return nil
}

func (r *postgresRepository) FindBanner(ctx context.Context, id uuid.UUID) (*model.AdBanner, error) {
	query := fmt.Sprintf(`SELECT %s FROM ad_banners WHERE id = $1`, bannerColumns)

	var b model.AdBanner
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.ImageURL, &b.TargetURL, &b.Position, &b.IsActive, &b.StartsAt, &b.EndsAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBannerNotFound
		}
		return nil, fmt.Errorf("find banner: %w", err)
	}
	return &b, nil
}

func (r *postgresRepository) ListBanners(ctx context.Context, position string, activeOnly bool) ([]*model.AdBanner, error) {
	conditions := "1=1"
	args := []interface{}{}
	argIndex := 1

	if activeOnly {
		conditions += ` AND is_active = true
			AND (starts_at IS NULL OR starts_at <= NOW())
			AND (ends_at IS NULL OR ends_at > NOW())`
	}
	if position != "" {
		conditions += fmt.Sprintf(" AND position = $%d", argIndex)
		args = append(args, position)
		argIndex++
	}

	query := fmt.Sprintf(`SELECT %s FROM ad_banners WHERE %s ORDER BY position, starts_at DESC NULLS LAST`, bannerColumns, conditions)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []*model.AdBanner
	for rows.Next() {
		var b model.AdBanner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.TargetURL, &b.Position, &b.IsActive, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, &b)
	}

	return banners, rows.Err()
}
