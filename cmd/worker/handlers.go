package main

import (
	"github.com/hibiken/asynq"

	accountJob "diamondnova-backend/internal/domains/account/job"
	notificationJob "diamondnova-backend/internal/domains/notification/job"
	vipJob "diamondnova-backend/internal/domains/vip/job"
	withdrawalJob "diamondnova-backend/internal/domains/withdrawal/job"
	"diamondnova-backend/internal/shared"
	"diamondnova-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// VIP handlers
	vipExpirySweep *vipJob.ExpirySweepHandler

	// Notification handlers
	notificationCleanup *notificationJob.CleanupHandler

	// Withdrawal handlers
	withdrawalDigest *withdrawalJob.PendingDigestHandler

	// Account handlers
	counterNormalize *accountJob.CounterNormalizeHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	jobCfg := c.Config.Job

	return &HandlerRegistry{
		// NotificationService satisfies both the vip Notifier and the
		// withdrawal AdminNotifier interfaces.
		vipExpirySweep:      vipJob.NewExpirySweepHandler(c.VipRepo, c.NotificationService, jobCfg),
		notificationCleanup: notificationJob.NewCleanupHandler(c.NotificationService, jobCfg),
		withdrawalDigest:    withdrawalJob.NewPendingDigestHandler(c.WithdrawalRepo, c.NotificationService, jobCfg),
		counterNormalize:    accountJob.NewCounterNormalizeHandler(c.AccountRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// VIP tasks
	mux.HandleFunc(shared.TypeVipExpirySweep, h.vipExpirySweep.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeNotificationCleanup, h.notificationCleanup.ProcessTask)
	mux.HandleFunc(shared.TypeWithdrawalDigest, h.withdrawalDigest.ProcessTask)
	mux.HandleFunc(shared.TypeCounterNormalize, h.counterNormalize.ProcessTask)
}
