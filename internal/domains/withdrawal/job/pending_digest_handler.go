package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/withdrawal/repository"
	"diamondnova-backend/pkg/logger"
)

// ================================================
// PENDING WITHDRAWAL DIGEST JOB HANDLER
// ================================================

// AdminNotifier fan-out một thông báo cho mọi admin
type AdminNotifier interface {
	PushToAdmins(ctx context.Context, title, body string) (int, error)
}

// PendingDigestHandler đếm lệnh rút pending và nhắc admin khi backlog
// vượt ngưỡng.
type PendingDigestHandler struct {
	repo      repository.Repository
	notifier  AdminNotifier
	jobConfig config.JobConfig
}

func NewPendingDigestHandler(repo repository.Repository, notifier AdminNotifier, jobConfig config.JobConfig) *PendingDigestHandler {
	return &PendingDigestHandler{repo: repo, notifier: notifier, jobConfig: jobConfig}
}

func (h *PendingDigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	pending, err := h.repo.CountPending(ctx)
	if err != nil {
		return err
	}

	if pending < h.jobConfig.DigestThreshold {
		logger.Debug("withdrawal backlog below threshold", map[string]interface{}{
			"pending":   pending,
			"threshold": h.jobConfig.DigestThreshold,
		})
		return nil
	}

	sent, err := h.notifier.PushToAdmins(ctx,
		"Backlog lệnh rút cần xử lý",
		fmt.Sprintf("Hiện có %d lệnh rút đang chờ duyệt.", pending))
	if err != nil {
		return err
	}

	logger.Info("withdrawal digest sent", map[string]interface{}{
		"pending": pending,
		"admins":  sent,
	})

	return nil
}
