package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/notification/service"
	"diamondnova-backend/internal/shared/utils"
	"diamondnova-backend/pkg/logger"
)

// ================================================
// NOTIFICATION CLEANUP JOB HANDLER
// ================================================

// CleanupHandler xóa notification đã đọc quá hạn giữ và các
// notification đã hết expires_at.
type CleanupHandler struct {
	notifications service.NotificationService
	jobConfig     config.JobConfig
}

func NewCleanupHandler(notifications service.NotificationService, jobConfig config.JobConfig) *CleanupHandler {
	return &CleanupHandler{notifications: notifications, jobConfig: jobConfig}
}

// Payload optional: override số ngày giữ, mặc định theo config
type cleanupPayload struct {
	Days int `json:"days"`
}

func (h *CleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload cleanupPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Warn("bad cleanup payload, using defaults", map[string]interface{}{"error": err.Error()})
	}

	days := payload.Days
	if days <= 0 {
		days = h.jobConfig.CleanupRetentionDays
	}

	deletedRead, err := h.notifications.CleanupOldRead(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}

	deletedExpired, err := h.notifications.CleanupExpired(ctx)
	if err != nil {
		return err
	}

	logger.Info("notification cleanup finished", map[string]interface{}{
		"deleted_read":    deletedRead,
		"deleted_expired": deletedExpired,
		"retention_days":  days,
	})

	return nil
}
