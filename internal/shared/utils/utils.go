package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// referralAlphabet bỏ các ký tự dễ nhầm (0/O, 1/I/L)
const referralAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateReferralCode sinh mã giới thiệu ngẫu nhiên, vd "NV7K2QPM"
func GenerateReferralCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code), nil
}

// FormatDisplayNo render số thứ tự hiển thị cho request, vd "DN-000123"
func FormatDisplayNo(no int64) string {
	return fmt.Sprintf("DN-%06d", no)
}

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// VNDFromPoints convert điểm về VND (1 VND = rate P) cho báo cáo
func VNDFromPoints(points int64, pointsPerVND int64) decimal.Decimal {
	return decimal.NewFromInt(points).Div(decimal.NewFromInt(pointsPerVND))
}

// UnmarshalTask decode payload JSON của một asynq task
func UnmarshalTask(t *asynq.Task, dest interface{}) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal task %s payload: %w", t.Type(), err)
	}
	return nil
}
