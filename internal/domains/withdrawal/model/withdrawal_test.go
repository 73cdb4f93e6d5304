package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRequestValidate(t *testing.T) {
	bankDetails := Details{BankName: "Vietcombank", AccountNumber: "0123456789", AccountName: "NGUYEN VAN A"}
	gameDetails := Details{GameName: "lienquan", GameID: "player#123", Server: "vn1"}

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{
			name: "rút bank hợp lệ",
			req:  CreateRequest{AmountVND: 50_000, Type: TypeBank, Details: bankDetails},
		},
		{
			name: "rút game hợp lệ",
			req:  CreateRequest{AmountVND: 50_000, Type: TypeGame, Details: gameDetails},
		},
		{
			name: "rút game không cần server",
			req: CreateRequest{AmountVND: 50_000, Type: TypeGame,
				Details: Details{GameName: "lienquan", GameID: "player#123"}},
		},
		{
			name:    "bank thiếu số tài khoản",
			req:     CreateRequest{AmountVND: 50_000, Type: TypeBank, Details: Details{BankName: "VCB", AccountName: "A"}},
			wantErr: ErrMissingBankDetails,
		},
		{
			name:    "game thiếu game id",
			req:     CreateRequest{AmountVND: 50_000, Type: TypeGame, Details: Details{GameName: "lienquan"}},
			wantErr: ErrMissingGameDetails,
		},
		{
			name:    "type bank nhưng gửi details game",
			req:     CreateRequest{AmountVND: 50_000, Type: TypeBank, Details: gameDetails},
			wantErr: ErrMissingBankDetails,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("amount và type bắt buộc", func(t *testing.T) {
		assert.Error(t, CreateRequest{Type: TypeBank, Details: bankDetails}.Validate())
		assert.Error(t, CreateRequest{AmountVND: 50_000, Type: "paypal"}.Validate())
	})
}

func TestRejectRequestValidate(t *testing.T) {
	assert.Error(t, RejectRequest{}.Validate(), "lý do reject là bắt buộc")
	assert.Error(t, RejectRequest{Reason: "no"}.Validate(), "lý do quá ngắn")
	assert.NoError(t, RejectRequest{Reason: "Sai thông tin ngân hàng"}.Validate())
}
