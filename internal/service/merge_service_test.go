package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/policy"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
)

type memoryMergeCache struct {
	values map[string]dto.MergedReports
	hits   int
}

func (m *memoryMergeCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	m.hits++
	*dest.(*dto.MergedReports) = v
	return nil
}

func (m *memoryMergeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]dto.MergedReports)
	}
	m.values[key] = value.(dto.MergedReports)
	return nil
}

func seededMergeRepo(t *testing.T) *mockReportRepo {
	t.Helper()
	repo := newMockReportRepo()
	svc := newReportService(repo, nil)

	uploadTrialBalance(t, svc, d1User, "TB-A", "district1")
	uploadTrialBalance(t, svc, d1User, "TB-B", "district1")

	d2User := policy.Actor{Username: "district2_user", Role: models.RoleDistrictUser, District: "district2"}
	content := workbook(t, trialBalanceColumns, []interface{}{"district2", "2026-07-31", "Cash", "5", "0"})
	_, err := svc.Upload(context.Background(), d2User, trialBalanceForm("TB-C"), "tb.xlsx", content)
	require.NoError(t, err)

	approved := models.ReviewerApproved
	for _, code := range []string{"TB-A", "TB-C"} {
		_, err := svc.UpdateStatus(context.Background(), hqActor, code, dto.StatusUpdateRequest{ReviewerStatus: &approved})
		require.NoError(t, err)
	}
	// TB-B only passes the checker axis; it must not appear merged.
	checked := models.CheckerChecked
	_, err = svc.UpdateStatus(context.Background(), d1Manager, "TB-B", dto.StatusUpdateRequest{CheckerStatus: &checked})
	require.NoError(t, err)

	return repo
}

func TestMergeServiceMerged(t *testing.T) {
	repo := seededMergeRepo(t)
	svc := NewMergeService(repo, nil, 0, zap.NewNop())

	merged, err := svc.Merged(context.Background(), hqActor)
	require.NoError(t, err)
	require.Contains(t, merged, "trial_balance")
	rows := merged["trial_balance"]
	assert.Len(t, rows, 2, "only reviewer-approved records contribute")

	districts := map[string]bool{}
	for _, row := range rows {
		districts[row["District"]] = true
	}
	assert.True(t, districts["district1"])
	assert.True(t, districts["district2"])
}

func TestMergeServicePolicyGate(t *testing.T) {
	svc := NewMergeService(seededMergeRepo(t), nil, 0, zap.NewNop())

	_, err := svc.Merged(context.Background(), d1Manager)
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongRole))
	_, err = svc.Merged(context.Background(), d1User)
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongRole))
}

func TestMergeServiceCacheAside(t *testing.T) {
	cache := &memoryMergeCache{}
	svc := NewMergeService(seededMergeRepo(t), cache, time.Minute, zap.NewNop())

	first, err := svc.Merged(context.Background(), hqActor)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	second, err := svc.Merged(context.Background(), hqActor)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}

func TestMergeServiceDatasets(t *testing.T) {
	svc := NewMergeService(seededMergeRepo(t), nil, 0, zap.NewNop())
	merged, err := svc.Merged(context.Background(), hqActor)
	require.NoError(t, err)

	datasets := svc.Datasets(merged)
	require.Len(t, datasets, 1)
	assert.Equal(t, "trial_balance", datasets[0].TypeID)
	assert.Equal(t, []string{"District", "Date", "Account", "Debit", "Credit"}, datasets[0].Dataset.Headers[:5])
	assert.Len(t, datasets[0].Dataset.Rows, 2)
}
