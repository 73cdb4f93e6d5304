package model

import "time"

// Tier levels - thứ tự tăng dần quyền lợi
const (
	TierNone  = "none"
	TierBasic = "basic"
	TierPro   = "pro"
	TierElite = "elite"
)

// TierSpec là một dòng trong bảng tier. Bảng này là table-driven
// để thêm tier mới không phải sửa logic.
type TierSpec struct {
	Tier         string `json:"tier"`
	MinAmountVND int64  `json:"min_amount_vnd"`
	DurationDays int    `json:"duration_days"`
}

// TierTable sắp xếp giảm dần theo MinAmountVND - GrantFor quét từ trên xuống,
// match đầu tiên thắng.
var TierTable = []TierSpec{
	{Tier: TierElite, MinAmountVND: 500_000, DurationDays: 30},
	{Tier: TierPro, MinAmountVND: 100_000, DurationDays: 7},
	{Tier: TierBasic, MinAmountVND: 0, DurationDays: 1},
}

// GrantFor trả về tier và duration cho một số tiền VND
func GrantFor(amountVND int64) TierSpec {
	for _, spec := range TierTable {
		if amountVND >= spec.MinAmountVND {
			return spec
		}
	}
	// TierTable luôn có dòng MinAmountVND=0 nên không tới đây
	return TierTable[len(TierTable)-1]
}

// ResolveGrantTier trả về tier sẽ ghi vào accounts khi grant.
// Tier đang sống cao hơn tier được grant thì giữ nguyên - mua gói thấp
// chỉ cộng ngày, không bao giờ downgrade. Tier đã hết hạn không tính.
func ResolveGrantTier(currentTier string, currentUntil *time.Time, granted string, now time.Time) string {
	if currentUntil != nil && currentUntil.After(now) && RankOf(currentTier) > RankOf(granted) {
		return currentTier
	}
	return granted
}

// RankOf dùng để so sánh tier (downgrade check)
func RankOf(tier string) int {
	switch tier {
	case TierElite:
		return 3
	case TierPro:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}
