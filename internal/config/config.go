package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	MinIO      MinIOConfig
	Rewards    RewardsConfig
	Withdrawal WithdrawalConfig
	Bank       BankConfig
	Job        JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // diamondnova
	UseSSL    bool
}

// RewardsConfig gom các hằng số kinh tế của platform.
// Đổi rate/bonus qua env, không hardcode trong service.
type RewardsConfig struct {
	PointsPerVND     int64 // 1 VND = 10 P
	DailyTaskCap     int   // tối đa 10 task/ngày, mọi gate cộng lại
	ReferralBonus    int64 // điểm thưởng cho người giới thiệu khi ref đăng ký
	TaskTokenTTLSecs int   // token vượt link chỉ sống trong cửa sổ này
}

// JobConfig - tham số các job bảo trì chạy nền
type JobConfig struct {
	CleanupRetentionDays int // giữ notification đã đọc bao nhiêu ngày
	DigestThreshold      int // số lệnh rút pending để báo admin
	VipSweepWindowHours  int // cửa sổ quét VIP hết hạn
}

// WithdrawalConfig điều khiển auto-approval cho lệnh rút
type WithdrawalConfig struct {
	AutoApproveScore  int   // security_score tối thiểu để được duyệt tự động
	AutoApproveMaxVND int64 // trần số tiền auto-approve
	MinVND            int64 // số tiền rút tối thiểu
}

// BankConfig là danh sách tài khoản nhận tiền cho VIP deposit.
// Format env: BANK_ACCOUNTS="Vietcombank|0123456789|DIAMOND NOVA,MB Bank|888999|NOVA JSC"
type BankConfig struct {
	Accounts []ReceivingAccount
}

type ReceivingAccount struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Diamond Nova API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "diamondnova"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 60),  // 1 hour
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72), // 3 days
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "diamondnova"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Rewards: RewardsConfig{
			PointsPerVND:     int64(getEnvInt("POINTS_PER_VND", 10)),
			DailyTaskCap:     getEnvInt("DAILY_TASK_CAP", 10),
			ReferralBonus:    int64(getEnvInt("REFERRAL_BONUS_POINTS", 1000)),
			TaskTokenTTLSecs: getEnvInt("TASK_TOKEN_TTL", 1500),
		},
		Withdrawal: WithdrawalConfig{
			AutoApproveScore:  getEnvInt("WITHDRAW_AUTO_APPROVE_SCORE", 80),
			AutoApproveMaxVND: int64(getEnvInt("WITHDRAW_AUTO_APPROVE_MAX_VND", 50000)),
			MinVND:            int64(getEnvInt("WITHDRAW_MIN_VND", 10000)),
		},
		Bank: BankConfig{
			Accounts: parseBankAccounts(getEnv("BANK_ACCOUNTS", "Vietcombank|0123456789|DIAMOND NOVA")),
		},
		Job: JobConfig{
			CleanupRetentionDays: getEnvInt("JOB_CLEANUP_RETENTION_DAYS", 30),
			DigestThreshold:      getEnvInt("JOB_DIGEST_THRESHOLD", 20),
			VipSweepWindowHours:  getEnvInt("JOB_VIP_SWEEP_WINDOW_HOURS", 1),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	// Production environment phải có JWT secret và DB password
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.Rewards.PointsPerVND <= 0 {
		return fmt.Errorf("POINTS_PER_VND must be positive")
	}
	if c.Rewards.DailyTaskCap <= 0 {
		return fmt.Errorf("DAILY_TASK_CAP must be positive")
	}
	if len(c.Bank.Accounts) == 0 {
		return fmt.Errorf("at least one receiving bank account is required")
	}

	return nil
}

// parseBankAccounts tách "Bank|Number|Name,Bank|Number|Name" thành slice
func parseBankAccounts(raw string) []ReceivingAccount {
	var accounts []ReceivingAccount
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), "|")
		if len(parts) != 3 {
			continue
		}
		accounts = append(accounts, ReceivingAccount{
			BankName:      strings.TrimSpace(parts[0]),
			AccountNumber: strings.TrimSpace(parts[1]),
			AccountName:   strings.TrimSpace(parts[2]),
		})
	}
	return accounts
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
