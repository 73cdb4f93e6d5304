package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	code, err := GenerateReferralCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	for _, c := range code {
		assert.True(t, strings.ContainsRune(referralAlphabet, c),
			"ký tự %q không nằm trong alphabet", c)
	}

	// Không chứa ký tự dễ nhầm
	assert.NotContains(t, referralAlphabet, "0")
	assert.NotContains(t, referralAlphabet, "O")
	assert.NotContains(t, referralAlphabet, "1")
	assert.NotContains(t, referralAlphabet, "I")
	assert.NotContains(t, referralAlphabet, "L")

	// Hai lần sinh không được trùng nhau (xác suất trùng ~0)
	other, err := GenerateReferralCode(8)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestFormatDisplayNo(t *testing.T) {
	assert.Equal(t, "DN-000001", FormatDisplayNo(1))
	assert.Equal(t, "DN-000123", FormatDisplayNo(123))
	assert.Equal(t, "DN-1234567", FormatDisplayNo(1234567), "không cắt số khi vượt 6 chữ số")
}

func TestParseStringToUUID(t *testing.T) {
	valid := uuid.New()
	assert.Equal(t, valid, ParseStringToUUID(valid.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("not-a-uuid"))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
}

func TestVNDFromPoints(t *testing.T) {
	// 1 VND = 10 P
	assert.Equal(t, "100", VNDFromPoints(1000, 10).String())
	assert.Equal(t, "0.5", VNDFromPoints(5, 10).String())
}

func TestUnmarshalTask(t *testing.T) {
	type payload struct {
		Days int `json:"days"`
	}

	var p payload
	task := asynq.NewTask("notification:cleanup", []byte(`{"days": 7}`))
	require.NoError(t, UnmarshalTask(task, &p))
	assert.Equal(t, 7, p.Days)

	// Payload rỗng là hợp lệ - job dùng default từ config
	p = payload{}
	empty := asynq.NewTask("notification:cleanup", nil)
	require.NoError(t, UnmarshalTask(empty, &p))
	assert.Zero(t, p.Days)

	bad := asynq.NewTask("notification:cleanup", []byte(`{{`))
	assert.Error(t, UnmarshalTask(bad, &p))
}
