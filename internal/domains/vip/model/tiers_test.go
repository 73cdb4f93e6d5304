package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrantFor(t *testing.T) {
	tests := []struct {
		name      string
		amountVND int64
		wantTier  string
		wantDays  int
	}{
		{"nhỏ nhất vẫn có basic", 1, TierBasic, 1},
		{"zero amount", 0, TierBasic, 1},
		{"ngay dưới ngưỡng pro", 99_999, TierBasic, 1},
		{"đúng ngưỡng pro", 100_000, TierPro, 7},
		{"giữa pro và elite", 250_000, TierPro, 7},
		{"ngay dưới ngưỡng elite", 499_999, TierPro, 7},
		{"đúng ngưỡng elite", 500_000, TierElite, 30},
		{"trên ngưỡng elite", 2_000_000, TierElite, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := GrantFor(tt.amountVND)
			assert.Equal(t, tt.wantTier, spec.Tier)
			assert.Equal(t, tt.wantDays, spec.DurationDays)
		})
	}
}

func TestTierTableOrdering(t *testing.T) {
	// GrantFor quét từ trên xuống nên bảng phải giảm dần theo min amount
	for i := 1; i < len(TierTable); i++ {
		assert.Greater(t, TierTable[i-1].MinAmountVND, TierTable[i].MinAmountVND,
			"tier table phải sắp giảm dần theo MinAmountVND")
	}
	// Dòng cuối phải là catch-all để GrantFor không bao giờ miss
	assert.Equal(t, int64(0), TierTable[len(TierTable)-1].MinAmountVND)
}

func TestResolveGrantTier(t *testing.T) {
	now := time.Now()
	future := now.Add(20 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name         string
		currentTier  string
		currentUntil *time.Time
		granted      string
		want         string
	}{
		{"elite còn hạn mua basic giữ elite", TierElite, &future, TierBasic, TierElite},
		{"elite còn hạn mua pro giữ elite", TierElite, &future, TierPro, TierElite},
		{"elite hết hạn mua basic thành basic", TierElite, &past, TierBasic, TierBasic},
		{"basic còn hạn mua elite lên elite", TierBasic, &future, TierElite, TierElite},
		{"cùng tier giữ nguyên", TierPro, &future, TierPro, TierPro},
		{"chưa từng có VIP", TierNone, nil, TierBasic, TierBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveGrantTier(tt.currentTier, tt.currentUntil, tt.granted, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankOf(t *testing.T) {
	assert.Greater(t, RankOf(TierElite), RankOf(TierPro))
	assert.Greater(t, RankOf(TierPro), RankOf(TierBasic))
	assert.Greater(t, RankOf(TierBasic), RankOf(TierNone))
	assert.Equal(t, 0, RankOf("unknown"))
}
