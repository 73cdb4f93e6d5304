package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diamondnova-backend/internal/config"
	ledgerModel "diamondnova-backend/internal/domains/ledger/model"
	"diamondnova-backend/internal/domains/task/model"
)

type fakeGateRepo struct {
	gates map[string]*model.Gate
}

func (f *fakeGateRepo) FindByName(ctx context.Context, name string) (*model.Gate, error) {
	g, ok := f.gates[name]
	if !ok {
		return nil, model.ErrGateNotFound
	}
	return g, nil
}

func (f *fakeGateRepo) ListActive(ctx context.Context) ([]*model.Gate, error) {
	var out []*model.Gate
	for _, g := range f.gates {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGateRepo) ListAll(ctx context.Context) ([]*model.Gate, error) {
	var out []*model.Gate
	for _, g := range f.gates {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGateRepo) Create(ctx context.Context, gate *model.Gate) error {
	if _, ok := f.gates[gate.Name]; ok {
		return model.ErrGateExists
	}
	f.gates[gate.Name] = gate
	return nil
}

func (f *fakeGateRepo) Update(ctx context.Context, gate *model.Gate) error {
	if _, ok := f.gates[gate.Name]; !ok {
		return model.ErrGateNotFound
	}
	f.gates[gate.Name] = gate
	return nil
}

func (f *fakeGateRepo) SetActive(ctx context.Context, name string, active bool) error {
	g, ok := f.gates[name]
	if !ok {
		return model.ErrGateNotFound
	}
	g.IsActive = active
	return nil
}

type fakeCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) GetDel(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	delete(f.data, key)
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func testGates() map[string]*model.Gate {
	return map[string]*model.Gate{
		"link4m":  {Name: "link4m", RewardPoints: 100, DailyQuota: 5, IsActive: true, RedirectURL: "https://link4m.example/go"},
		"yeulink": {Name: "yeulink", RewardPoints: 80, DailyQuota: 3, IsActive: false, RedirectURL: "https://yeulink.example/go"},
	}
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()
	rewards := config.RewardsConfig{PointsPerVND: 10, DailyTaskCap: 10, TaskTokenTTLSecs: 600}

	t.Run("mint token và ghi payload vào cache", func(t *testing.T) {
		store := newFakeCache()
		svc := NewTaskService(&fakeGateRepo{gates: testGates()}, nil, store, rewards)

		resp, err := svc.IssueToken(ctx, accountID, "link4m")
		require.NoError(t, err)

		assert.Len(t, resp.Token, 32, "128-bit hex")
		assert.Equal(t, "link4m", resp.Gate)
		assert.Equal(t, "https://link4m.example/go", resp.RedirectURL)

		var payload ledgerModel.TaskToken
		found, err := store.Get(ctx, ledgerModel.TaskTokenKeyPrefix+resp.Token, &payload)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, accountID, payload.AccountID)
		assert.Equal(t, int64(100), payload.Points)
		assert.Equal(t, 5, payload.GateQuota)
		assert.Equal(t, 10*time.Minute, store.ttls[ledgerModel.TaskTokenKeyPrefix+resp.Token])
	})

	t.Run("hai lượt issue cho ra token khác nhau", func(t *testing.T) {
		store := newFakeCache()
		svc := NewTaskService(&fakeGateRepo{gates: testGates()}, nil, store, rewards)

		first, err := svc.IssueToken(ctx, accountID, "link4m")
		require.NoError(t, err)
		second, err := svc.IssueToken(ctx, accountID, "link4m")
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)
	})

	t.Run("gate không tồn tại", func(t *testing.T) {
		svc := NewTaskService(&fakeGateRepo{gates: testGates()}, nil, newFakeCache(), rewards)
		_, err := svc.IssueToken(ctx, accountID, "nope")
		assert.ErrorIs(t, err, model.ErrGateNotFound)
	})

	t.Run("gate đang tắt", func(t *testing.T) {
		svc := NewTaskService(&fakeGateRepo{gates: testGates()}, nil, newFakeCache(), rewards)
		_, err := svc.IssueToken(ctx, accountID, "yeulink")
		assert.ErrorIs(t, err, model.ErrGateInactive)
	})
}

func TestListGatesHidesRedirectURL(t *testing.T) {
	svc := NewTaskService(&fakeGateRepo{gates: testGates()}, nil, newFakeCache(), config.RewardsConfig{})

	views, err := svc.ListGates(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1, "gate tắt không hiện với user")
	assert.Equal(t, "link4m", views[0].Name)
}

func TestCreateGate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGateRepo{gates: testGates()}
	svc := NewTaskService(repo, nil, newFakeCache(), config.RewardsConfig{})

	gate, err := svc.CreateGate(ctx, model.UpsertGateRequest{
		Name:         "xlink",
		RewardPoints: 120,
		DailyQuota:   4,
		RedirectURL:  "https://xlink.example/go",
	})
	require.NoError(t, err)
	assert.True(t, gate.IsActive, "mặc định active khi không gửi is_active")

	_, err = svc.CreateGate(ctx, model.UpsertGateRequest{
		Name:         "xlink",
		RewardPoints: 120,
		DailyQuota:   4,
		RedirectURL:  "https://xlink.example/go",
	})
	assert.ErrorIs(t, err, model.ErrGateExists)
}
