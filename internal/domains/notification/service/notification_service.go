package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"diamondnova-backend/internal/domains/notification/model"
	"diamondnova-backend/internal/domains/notification/repository"
	"diamondnova-backend/pkg/logger"
)

// NotificationService - inbox + announcements + banners.
// Push implement Notifier interface của withdrawal và vip services.
type NotificationService interface {
	// Inbox
	Push(ctx context.Context, accountID uuid.UUID, title, body string) error
	PushToAdmins(ctx context.Context, title, body string) (int, error)
	ListMine(ctx context.Context, accountID uuid.UUID, unreadOnly bool, page, limit int) ([]*model.Notification, int, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error)

	// Maintenance (worker)
	CleanupOldRead(ctx context.Context, olderThan time.Duration) (int64, error)
	CleanupExpired(ctx context.Context) (int64, error)

	// Announcements
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*model.Announcement, error)
	CreateAnnouncement(ctx context.Context, req model.UpsertAnnouncementRequest) (*model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, req model.UpsertAnnouncementRequest) (*model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error

	// Ad banners
	ListBanners(ctx context.Context, position string, activeOnly bool) ([]*model.AdBanner, error)
	CreateBanner(ctx context.Context, req model.UpsertBannerRequest) (*model.AdBanner, error)
	UpdateBanner(ctx context.Context, id uuid.UUID, req model.UpsertBannerRequest) (*model.AdBanner, error)
	DeleteBanner(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	repo repository.Repository
}

func NewNotificationService(repo repository.Repository) NotificationService {
	return &notificationService{repo: repo}
}

// ========================================
// INBOX
// ========================================

func (s *notificationService) Push(ctx context.Context, accountID uuid.UUID, title, body string) error {
	return s.repo.Insert(ctx, &model.Notification{
		ID:        uuid.New(),
		AccountID: accountID,
		Title:     title,
		Body:      body,
	})
}

func (s *notificationService) PushToAdmins(ctx context.Context, title, body string) (int, error) {
	return s.repo.InsertForAdmins(ctx, title, body)
}

func (s *notificationService) ListMine(ctx context.Context, accountID uuid.UUID, unreadOnly bool, page, limit int) ([]*model.Notification, int, error) {
	return s.repo.ListByAccount(ctx, accountID, unreadOnly, page, limit)
}

func (s *notificationService) CountUnread(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, accountID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, accountID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, accountID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, accountID)
}

// ========================================
// MAINTENANCE
// ========================================

func (s *notificationService) CleanupOldRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteOldRead(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	logger.Info("cleaned up old read notifications", map[string]interface{}{
		"deleted":    deleted,
		"older_than": olderThan.String(),
	})

	return deleted, nil
}

func (s *notificationService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

// ========================================
// ANNOUNCEMENTS
// ========================================

func (s *notificationService) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*model.Announcement, error) {
	return s.repo.ListAnnouncements(ctx, activeOnly)
}

func (s *notificationService) CreateAnnouncement(ctx context.Context, req model.UpsertAnnouncementRequest) (*model.Announcement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := &model.Announcement{
		ID:       uuid.New(),
		Title:    req.Title,
		Body:     req.Body,
		IsActive: true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.IsPinned != nil {
		a.IsPinned = *req.IsPinned
	}

	if err := s.repo.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *notificationService) UpdateAnnouncement(ctx context.Context, id uuid.UUID, req model.UpsertAnnouncementRequest) (*model.Announcement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.FindAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Title = req.Title
	a.Body = req.Body
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.IsPinned != nil {
		a.IsPinned = *req.IsPinned
	}

	if err := s.repo.UpdateAnnouncement(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *notificationService) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAnnouncement(ctx, id)
}

// ========================================
// AD BANNERS
// ========================================

func (s *notificationService) ListBanners(ctx context.Context, position string, activeOnly bool) ([]*model.AdBanner, error) {
	return s.repo.ListBanners(ctx, position, activeOnly)
}

func (s *notificationService) CreateBanner(ctx context.Context, req model.UpsertBannerRequest) (*model.AdBanner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := &model.AdBanner{
		ID:        uuid.New(),
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		TargetURL: req.TargetURL,
		Position:  req.Position,
		IsActive:  true,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.repo.CreateBanner(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *notificationService) UpdateBanner(ctx context.Context, id uuid.UUID, req model.UpsertBannerRequest) (*model.AdBanner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.FindBanner(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Title = req.Title
	b.ImageURL = req.ImageURL
	b.TargetURL = req.TargetURL
	b.Position = req.Position
	b.StartsAt = req.StartsAt
	b.EndsAt = req.EndsAt
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateBanner(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *notificationService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBanner(ctx, id)
}
