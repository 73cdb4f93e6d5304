package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/shared"
	"diamondnova-backend/pkg/logger"
)

// Scheduler đăng ký các job bảo trì định kỳ vào asynq
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress, redisPassword string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress, Password: redisPassword},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerVipExpirySweepJob(); err != nil {
		return err
	}

	if err := s.registerNotificationCleanupJob(); err != nil {
		return err
	}

	if err := s.registerWithdrawalDigestJob(); err != nil {
		return err
	}

	return s.registerCounterNormalizeJob()
}

// ================================================
// JOB 1: VIP Expiry Sweep (hourly)
// ================================================
// Quyền lợi VIP tự rơi khi vip_until qua (derived), job chỉ gửi thông
// báo nên chạy mỗi giờ là đủ kịp thời.
func (s *Scheduler) registerVipExpirySweepJob() error {
	task := asynq.NewTask(shared.TypeVipExpirySweep, nil)

	_, err := s.scheduler.Register(
		"0 * * * *", // đầu mỗi giờ
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register VipExpirySweep job", err)
		return err
	}

	logger.Info("✓ Registered VipExpirySweep: hourly", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Notification Cleanup (daily at 2 AM)
// ================================================
// Giờ thấp điểm; xóa notification đã đọc quá hạn giữ và đã hết expires_at.
func (s *Scheduler) registerNotificationCleanupJob() error {
	task := asynq.NewTask(shared.TypeNotificationCleanup, nil)

	_, err := s.scheduler.Register(
		"0 2 * * *", // daily 02:00
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register NotificationCleanup job", err)
		return err
	}

	logger.Info("✓ Registered NotificationCleanup: daily at 2 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 3: Withdrawal Pending Digest (every 6 hours)
// ================================================
func (s *Scheduler) registerWithdrawalDigestJob() error {
	task := asynq.NewTask(shared.TypeWithdrawalDigest, nil)

	_, err := s.scheduler.Register(
		"0 */6 * * *", // 00:00, 06:00, 12:00, 18:00
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register WithdrawalDigest job", err)
		return err
	}

	logger.Info("✓ Registered WithdrawalDigest: every 6 hours", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 4: Task Counter Normalize (daily at 00:05)
// ================================================
// Chạy ngay sau nửa đêm để báo cáo trong ngày đọc cột counter sạch.
// Đường credit không phụ thuộc job này.
func (s *Scheduler) registerCounterNormalizeJob() error {
	task := asynq.NewTask(shared.TypeCounterNormalize, nil)

	_, err := s.scheduler.Register(
		"5 0 * * *", // daily 00:05
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CounterNormalize job", err)
		return err
	}

	logger.Info("✓ Registered CounterNormalize: daily at 00:05", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
