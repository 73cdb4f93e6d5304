package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"diamondnova-backend/internal/config"
	"diamondnova-backend/internal/domains/withdrawal/model"
	"diamondnova-backend/internal/domains/withdrawal/repository"
)

// fakeListRepo phục vụ ExportXLSX: List trả dữ liệu theo trang như
// repository thật
type fakeListRepo struct {
	repository.Repository
	requests  []*model.Request
	listCalls int
}

func (f *fakeListRepo) List(ctx context.Context, filter model.ListFilter) ([]*model.Request, int, error) {
	f.listCalls++
	start := (filter.Page - 1) * filter.Limit
	if start >= len(f.requests) {
		return nil, len(f.requests), nil
	}
	end := start + filter.Limit
	if end > len(f.requests) {
		end = len(f.requests)
	}
	return f.requests[start:end], len(f.requests), nil
}

func makeRequests(n int) []*model.Request {
	requests := make([]*model.Request, 0, n)
	for i := 0; i < n; i++ {
		requests = append(requests, &model.Request{
			ID:           uuid.New(),
			AccountID:    uuid.New(),
			AmountVND:    10_000,
			AmountPoints: 100_000,
			Type:         model.TypeBank,
			Details:      model.Details{BankName: "Vietcombank", AccountNumber: "0123456789", AccountName: "NGUYEN VAN A"},
			Status:       model.StatusPending,
			CreatedAt:    time.Now(),
			DisplayCode:  fmt.Sprintf("DN-%06d", i+1),
		})
	}
	return requests
}

func TestExportXLSXPagesThroughAllRequests(t *testing.T) {
	// Nhiều hơn một batch: export phải đọc hết, không cắt ngầm
	repo := &fakeListRepo{requests: makeRequests(2_500)}
	svc := NewWithdrawalService(repo, nil, nil, config.WithdrawalConfig{}, config.RewardsConfig{PointsPerVND: 10})

	data, err := svc.ExportXLSX(context.Background(), model.ListFilter{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, repo.listCalls, 3, "2500 lệnh với batch 1000 phải cần ít nhất 3 lần List")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Withdrawals")
	require.NoError(t, err)
	// header + 2500 lệnh + dòng tổng
	require.Len(t, rows, 2_502)

	totals := rows[len(rows)-1]
	assert.Equal(t, "TỔNG", totals[0])
	assert.Equal(t, "25000000", totals[3])
	assert.Equal(t, "250000000", totals[4])
}

func TestExportXLSXEmpty(t *testing.T) {
	repo := &fakeListRepo{}
	svc := NewWithdrawalService(repo, nil, nil, config.WithdrawalConfig{}, config.RewardsConfig{PointsPerVND: 10})

	data, err := svc.ExportXLSX(context.Background(), model.ListFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Withdrawals")
	require.NoError(t, err)
	// header + dòng tổng, không có lệnh nào
	require.Len(t, rows, 2)
	assert.Equal(t, "TỔNG", rows[1][0])
}
