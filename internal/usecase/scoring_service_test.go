package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sodam/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func gangnam() map[string]float64 {
	return map[string]float64{
		"foot_traffic":     0.9,
		"competitors_500m": 0.3,
		"avg_income":       0.8,
		"rent_cost":        0.6,
		"age_20s_ratio":    0.7,
	}
}

func TestScoringService_ScoreWeighted(t *testing.T) {
	svc := NewScoringService(nil, ScoringServiceConfig{})

	tests := []struct {
		name     string
		features map[string]float64
		want     float64
	}{
		{"gangnam candidate", gangnam(), 70.5},
		{"all zero is neutral", map[string]float64{}, 50},
		{"clamped at 100", map[string]float64{"foot_traffic": 10}, 100},
		{"clamped at 0", map[string]float64{"competitors_500m": 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.ScoreWeighted(tt.features)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
			require.Len(t, res.Breakdown, len(domain.FeatureNames))
		})
	}
}

func TestScoringService_ScoreWeighted_BreakdownOrder(t *testing.T) {
	svc := NewScoringService(nil, ScoringServiceConfig{
		Weights: map[string]float64{
			"zeta":          1,
			"rent_cost":     -0.1,
			"foot_traffic":  0.35,
			"accessibility": 0.2,
		},
	})

	res := svc.ScoreWeighted(map[string]float64{"foot_traffic": 1, "zeta": 0.5})

	var order []string
	for _, e := range res.Breakdown {
		order = append(order, e.Feature)
	}
	assert.Equal(t, []string{"foot_traffic", "rent_cost", "accessibility", "zeta"}, order)

	e, ok := res.Breakdown.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, 0.5, e.Contrib)
	e, ok = res.Breakdown.Get("rent_cost")
	require.True(t, ok)
	assert.Equal(t, 0.0, e.Value)
}

func TestScoringService_ScoreProfile(t *testing.T) {
	svc := NewScoringService(nil, ScoringServiceConfig{})

	t.Run("bakery", func(t *testing.T) {
		res, err := svc.ScoreProfile(gangnam(), "베이커리")
		require.NoError(t, err)

		assert.InDelta(t, 68.7, res.Score, 1e-9)
		assert.InDelta(t, 66.7, res.Breakdown.Base, 1e-9)
		assert.InDelta(t, 85.7, res.Breakdown.Income, 1e-9)
		assert.InDelta(t, 70.0, res.Breakdown.Age, 1e-9)
		assert.InDelta(t, 50.0, res.Breakdown.Gender, 1e-9)
		assert.Equal(t, 0.5, res.Breakdown.Weights.Base)
	})

	t.Run("unknown business type", func(t *testing.T) {
		_, err := svc.ScoreProfile(gangnam(), "우주정거장")
		assert.True(t, errors.Is(err, domain.ErrUnknownProfile))
	})
}

func TestScoringService_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("nil request", func(t *testing.T) {
		svc := NewScoringService(NewMockCacheRepository(), ScoringServiceConfig{})
		_, err := svc.Score(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("weighted result is cached", func(t *testing.T) {
		mockCache := NewMockCacheRepository()
		svc := NewScoringService(mockCache, ScoringServiceConfig{})

		res, err := svc.Score(ctx, &domain.ScoreRequest{Features: gangnam()})
		require.NoError(t, err)
		assert.IsType(t, &domain.ScoreResponse{}, res)
		assert.True(t, mockCache.setCalled)

		key := cacheKey("weighted", gangnam())
		assert.Contains(t, mockCache.data, key)

		// poison the cache to prove the second call is served from it
		mockCache.data[key] = []byte(`{"score":1,"breakdown":{}}`)
		res, err = svc.Score(ctx, &domain.ScoreRequest{Features: gangnam()})
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.TotalScore())
	})

	t.Run("known business type uses profile", func(t *testing.T) {
		mockCache := NewMockCacheRepository()
		svc := NewScoringService(mockCache, ScoringServiceConfig{})

		res, err := svc.Score(ctx, &domain.ScoreRequest{BizType: "베이커리", Features: gangnam()})
		require.NoError(t, err)
		profile, ok := res.(*domain.ProfileScoreResponse)
		require.True(t, ok)
		assert.InDelta(t, 68.7, profile.Score, 1e-9)
		assert.Contains(t, mockCache.data, cacheKey("profile:베이커리", gangnam()))
	})

	t.Run("unknown business type falls back to weighted", func(t *testing.T) {
		svc := NewScoringService(NewMockCacheRepository(), ScoringServiceConfig{})

		res, err := svc.Score(ctx, &domain.ScoreRequest{BizType: "우주정거장", Features: gangnam()})
		require.NoError(t, err)
		assert.IsType(t, &domain.ScoreResponse{}, res)
		assert.InDelta(t, 70.5, res.TotalScore(), 1e-9)
	})

	t.Run("cache errors do not fail scoring", func(t *testing.T) {
		mockCache := NewMockCacheRepository()
		mockCache.getError = errors.New("cache down")
		mockCache.setError = errors.New("cache down")
		svc := NewScoringService(mockCache, ScoringServiceConfig{})

		res, err := svc.Score(ctx, &domain.ScoreRequest{Features: gangnam()})
		require.NoError(t, err)
		assert.InDelta(t, 70.5, res.TotalScore(), 1e-9)
	})

	t.Run("undecodable cache entry is recomputed", func(t *testing.T) {
		mockCache := NewMockCacheRepository()
		svc := NewScoringService(mockCache, ScoringServiceConfig{})
		mockCache.data[cacheKey("weighted", gangnam())] = []byte(`not json`)

		res, err := svc.Score(ctx, &domain.ScoreRequest{Features: gangnam()})
		require.NoError(t, err)
		assert.InDelta(t, 70.5, res.TotalScore(), 1e-9)
	})
}

func TestScoringService_ScoreBatch(t *testing.T) {
	ctx := context.Background()
	svc := NewScoringService(nil, ScoringServiceConfig{})

	t.Run("weighted keeps item fields", func(t *testing.T) {
		res, err := svc.ScoreBatch(ctx, &domain.BatchRequest{
			Items: []domain.BatchItem{
				{
					Fields: domain.ItemFields{
						{Key: "id", Value: json.RawMessage(`"a"`)},
						{Key: "name", Value: json.RawMessage(`"강남"`)},
						{Key: "lat", Value: json.RawMessage(`37.4979`)},
					},
					Features: gangnam(),
				},
				{Fields: domain.ItemFields{{Key: "id", Value: json.RawMessage(`7`)}}, Features: map[string]float64{}},
			},
		})
		require.NoError(t, err)
		require.Len(t, res.Items, 2)

		id, ok := res.Items[0].Fields.Get("id")
		require.True(t, ok)
		assert.JSONEq(t, `"a"`, string(id))
		lat, ok := res.Items[0].Fields.Get("lat")
		require.True(t, ok)
		assert.JSONEq(t, `37.4979`, string(lat))
		_, ok = res.Items[0].Fields.Get("lon")
		assert.False(t, ok)
		assert.InDelta(t, 70.5, res.Items[0].Score, 1e-9)

		id, _ = res.Items[1].Fields.Get("id")
		assert.JSONEq(t, `7`, string(id))
		assert.InDelta(t, 50.0, res.Items[1].Score, 1e-9)
	})

	t.Run("profile income percentile is relative to the batch", func(t *testing.T) {
		res, err := svc.ScoreBatch(ctx, &domain.BatchRequest{
			BizType: "베이커리",
			Items: []domain.BatchItem{
				{Features: map[string]float64{"avg_income": 300}},
				{Features: map[string]float64{"avg_income": 400}},
				{Features: map[string]float64{"avg_income": 500}},
				{Features: map[string]float64{"avg_income": 500, "income_percentile": 60}},
			},
		})
		require.NoError(t, err)
		require.Len(t, res.Items, 4)

		income := func(i int) float64 {
			b, ok := res.Items[i].Breakdown.(domain.ProfileBreakdown)
			require.True(t, ok)
			return b.Income
		}
		// percentiles 0, 50, 100 on rampUp(50, 85)
		assert.InDelta(t, 0.0, income(0), 1e-9)
		assert.InDelta(t, 0.0, income(1), 1e-9)
		assert.InDelta(t, 100.0, income(2), 1e-9)
		// explicit 60 -> (60-50)/35
		assert.InDelta(t, 28.6, income(3), 1e-9)
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := svc.ScoreBatch(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestScoringService_Sample(t *testing.T) {
	svc := NewScoringService(nil, ScoringServiceConfig{})

	res := svc.Sample(context.Background())
	require.Len(t, res.Items, 3)

	assert.Equal(t, "A-101", res.Items[0].AreaID)
	assert.Equal(t, "강남역 11번 출구", res.Items[0].AreaName)
	assert.InDelta(t, 70.5, res.Items[0].Score, 1e-9)
	assert.Equal(t, 0.9, res.Items[0].Features.FootTraffic)

	for _, item := range res.Items {
		assert.Len(t, item.Breakdown, 5)
		assert.InDelta(t, svc.ScoreWeighted(item.Features.Map()).Score, item.Score, 1e-9)
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("weighted", map[string]float64{"b": 2, "a": 0.5})
	b := cacheKey("weighted", map[string]float64{"a": 0.5, "b": 2})
	assert.Equal(t, "score:weighted:a=0.5,b=2", a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, cacheKey("profile:카페", map[string]float64{"a": 0.5, "b": 2}))
}
