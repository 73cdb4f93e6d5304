package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/vip/repository"
	vipService "diamondnova-backend/internal/domains/vip/service"
	"diamondnova-backend/pkg/logger"
)

// ================================================
// VIP EXPIRY SWEEP JOB HANDLER
// ================================================

// ExpirySweepHandler thông báo cho account vừa hết VIP trong cửa sổ
// quét. KHÔNG mutate gì: is_vip là giá trị derived từ vip_until nên
// quyền lợi tự rơi khi hết hạn.
type ExpirySweepHandler struct {
	repo      repository.Repository
	notifier  vipService.Notifier
	jobConfig config.JobConfig
}

func NewExpirySweepHandler(repo repository.Repository, notifier vipService.Notifier, jobConfig config.JobConfig) *ExpirySweepHandler {
	return &ExpirySweepHandler{repo: repo, notifier: notifier, jobConfig: jobConfig}
}

func (h *ExpirySweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	window := time.Duration(h.jobConfig.VipSweepWindowHours) * time.Hour
	now := time.Now()

	lapsed, err := h.repo.ListLapsedBetween(ctx, now.Add(-window), now)
	if err != nil {
		return err
	}

	notified := 0
	for _, l := range lapsed {
		err := h.notifier.Push(ctx, l.AccountID,
			"Gói VIP đã hết hạn",
			fmt.Sprintf("Gói VIP %s của bạn đã hết hạn lúc %s. Gia hạn để tiếp tục nhận ưu đãi.",
				l.Tier, l.VipUntil.Format("02/01/2006 15:04")))
		if err != nil {
			// Một push fail không chặn các account còn lại
			logger.Warn("failed to push vip expiry notification", map[string]interface{}{
				"account": l.AccountID,
				"error":   err.Error(),
			})
			continue
		}
		notified++
	}

	logger.Info("vip expiry sweep finished", map[string]interface{}{
		"lapsed":   len(lapsed),
		"notified": notified,
		"window":   window.String(),
	})

	return nil
}
