package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateGiftcodeRequestValidate(t *testing.T) {
	valid := CreateGiftcodeRequest{Code: "TET-2025", Amount: 5000, MaxUses: 100}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  CreateGiftcodeRequest
	}{
		{"code rỗng", CreateGiftcodeRequest{Amount: 5000, MaxUses: 100}},
		{"code quá ngắn", CreateGiftcodeRequest{Code: "AB", Amount: 5000, MaxUses: 100}},
		{"code có ký tự lạ", CreateGiftcodeRequest{Code: "TET 2025!", Amount: 5000, MaxUses: 100}},
		{"amount zero", CreateGiftcodeRequest{Code: "TET2025", MaxUses: 100}},
		{"max uses zero", CreateGiftcodeRequest{Code: "TET2025", Amount: 5000}},
		{"max uses quá lớn", CreateGiftcodeRequest{Code: "TET2025", Amount: 5000, MaxUses: 2_000_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.req.Validate())
		})
	}
}

func TestNormalizedCode(t *testing.T) {
	// Match không phân biệt hoa thường nên lưu trữ luôn UPPER
	assert.Equal(t, "TET2025", CreateGiftcodeRequest{Code: " tet2025 "}.NormalizedCode())
	assert.Equal(t, "NOVA-88", CreateGiftcodeRequest{Code: "nova-88"}.NormalizedCode())
}
