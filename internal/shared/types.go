package shared

// Asynq task type names và queue names dùng chung giữa API và worker
const (
	TypeVipExpirySweep      = "vip:expiry_sweep"
	TypeNotificationCleanup = "notification:cleanup"
	TypeWithdrawalDigest    = "withdrawal:pending_digest"
	TypeCounterNormalize    = "account:counter_normalize"

	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)
