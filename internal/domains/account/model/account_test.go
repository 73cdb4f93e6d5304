package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsVip(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		vipUntil *time.Time
		want     bool
	}{
		{"chưa từng mua VIP", nil, false},
		{"VIP còn hạn", timePtr(now.Add(24 * time.Hour)), true},
		{"VIP hết hạn", timePtr(now.Add(-time.Minute)), false},
		{"hết hạn đúng thời điểm now", timePtr(now), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{VipTier: "pro", VipUntil: tt.vipUntil}
			assert.Equal(t, tt.want, acc.IsVip(now))
		})
	}
}

func TestEffectiveVipTier(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	expired := &Account{VipTier: "elite", VipUntil: timePtr(now.Add(-time.Hour))}
	assert.Equal(t, "none", expired.EffectiveVipTier(now),
		"tier cũ trong DB không được leak ra sau khi hết hạn")

	active := &Account{VipTier: "elite", VipUntil: timePtr(now.Add(time.Hour))}
	assert.Equal(t, "elite", active.EffectiveVipTier(now))
}

func TestEffectiveTasksToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastTaskDate *time.Time
		stored       int
		want         int
	}{
		{"chưa làm task nào", nil, 0, 0},
		{"đã làm hôm nay", timePtr(now.Add(-2 * time.Hour)), 4, 4},
		{"counter là của hôm qua", timePtr(now.AddDate(0, 0, -1)), 7, 0},
		{"counter cũ cả tuần", timePtr(now.AddDate(0, 0, -9)), 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{TasksToday: tt.stored, LastTaskDate: tt.lastTaskDate}
			assert.Equal(t, tt.want, acc.EffectiveTasksToday(now))
		})
	}
}

func TestEffectiveTasksWeek(t *testing.T) {
	// Monday 2025-06-16
	monday := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	acc := &Account{TasksWeek: 12, LastTaskDate: timePtr(monday.AddDate(0, 0, -1))}
	assert.Equal(t, 0, acc.EffectiveTasksWeek(monday),
		"Chủ nhật tuần trước không tính vào tuần ISO hiện tại")

	acc = &Account{TasksWeek: 12, LastTaskDate: timePtr(monday.AddDate(0, 0, 3))}
	assert.Equal(t, 12, acc.EffectiveTasksWeek(monday.AddDate(0, 0, 4)))
}

func TestEffectiveGateCount(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	acc := &Account{
		TaskCounts:   map[string]int{"link4m": 3, "yeulink": 1},
		LastTaskDate: timePtr(now.Add(-time.Hour)),
	}
	assert.Equal(t, 3, acc.EffectiveGateCount("link4m", now))
	assert.Equal(t, 0, acc.EffectiveGateCount("unknown-gate", now))

	acc.LastTaskDate = timePtr(now.AddDate(0, 0, -1))
	assert.Equal(t, 0, acc.EffectiveGateCount("link4m", now), "per-gate count reset theo ngày")
}
