package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Notification - một dòng trong inbox của user
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	AccountID uuid.UUID  `json:"account_id" db:"account_id"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// Announcement - thông báo toàn hệ thống, hiển thị cho mọi user
type Announcement struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsPinned  bool      `json:"is_pinned" db:"is_pinned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AdBanner - banner quảng cáo có cửa sổ hiển thị
type AdBanner struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	ImageURL  string     `json:"image_url" db:"image_url"`
	TargetURL string     `json:"target_url" db:"target_url"`
	Position  string     `json:"position" db:"position"` // home_top, home_bottom, sidebar
	IsActive  bool       `json:"is_active" db:"is_active"`
	StartsAt  *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty" db:"ends_at"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrBannerNotFound       = errors.New("ad banner not found")
)

// ========================================
// DTOs
// ========================================

type UpsertAnnouncementRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsActive *bool  `json:"is_active"`
	IsPinned *bool  `json:"is_pinned"`
}

func (r UpsertAnnouncementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Body, validation.Required, validation.Length(3, 5000)),
	)
}

type UpsertBannerRequest struct {
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	TargetURL string     `json:"target_url"`
	Position  string     `json:"position"`
	IsActive  *bool      `json:"is_active"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
}

func (r UpsertBannerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.ImageURL, validation.Required),
		validation.Field(&r.Position, validation.Required,
			validation.In("home_top", "home_bottom", "sidebar")),
	)
}
