package job

import (
	"context"

	"github.com/hibiken/asynq"

	"diamondnova-backend/internal/domains/account"
	"diamondnova-backend/pkg/logger"
)

// ================================================
// TASK COUNTER NORMALIZE JOB HANDLER
// ================================================

// CounterNormalizeHandler zero các counter đã qua ngày trong storage.
// Chỉ phục vụ báo cáo đọc thẳng cột: đường credit diễn giải counter
// theo last_task_date nên không phụ thuộc job này.
type CounterNormalizeHandler struct {
	repo account.Repository
}

func NewCounterNormalizeHandler(repo account.Repository) *CounterNormalizeHandler {
	return &CounterNormalizeHandler{repo: repo}
}

func (h *CounterNormalizeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	normalized, err := h.repo.NormalizeTaskCounters(ctx)
	if err != nil {
		return err
	}

	logger.Info("task counters normalized", map[string]interface{}{
		"accounts": normalized,
	})

	return nil
}
