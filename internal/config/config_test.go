package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBankAccounts(t *testing.T) {
	t.Run("một tài khoản", func(t *testing.T) {
		accounts := parseBankAccounts("Vietcombank|0123456789|DIAMOND NOVA")
		require.Len(t, accounts, 1)
		assert.Equal(t, "Vietcombank", accounts[0].BankName)
		assert.Equal(t, "0123456789", accounts[0].AccountNumber)
		assert.Equal(t, "DIAMOND NOVA", accounts[0].AccountName)
	})

	t.Run("nhiều tài khoản có whitespace", func(t *testing.T) {
		accounts := parseBankAccounts("VCB|01|NOVA A , MB|02|NOVA B")
		require.Len(t, accounts, 2)
		assert.Equal(t, "MB", accounts[1].BankName)
		assert.Equal(t, "NOVA B", accounts[1].AccountName)
	})

	t.Run("entry thiếu field bị bỏ qua", func(t *testing.T) {
		accounts := parseBankAccounts("VCB|01|NOVA,broken-entry,MB|02")
		require.Len(t, accounts, 1)
		assert.Equal(t, "VCB", accounts[0].BankName)
	})

	t.Run("chuỗi rỗng", func(t *testing.T) {
		assert.Empty(t, parseBankAccounts(""))
	})
}
