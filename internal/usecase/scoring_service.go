package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/internal/domain"
)

var log = logrus.WithField("prefix", "usecase")

// DefaultWeights are the weighted scorer's weights when none are configured
var DefaultWeights = map[string]float64{
	domain.FeatureFootTraffic:     0.35,
	domain.FeatureCompetitors500m: -0.25,
	domain.FeatureAvgIncome:       0.20,
	domain.FeatureRentCost:        -0.10,
	domain.FeatureAge20sRatio:     0.10,
}

// ScoringServiceConfig holds configuration for the scoring service
type ScoringServiceConfig struct {
	CacheTTL time.Duration
	Weights  map[string]float64
}

type featureWeight struct {
	feature string
	weight  float64
}

// ScoringService scores locations, either with the weighted model or with a
// business-type profile, and caches single-location results.
type ScoringService struct {
	cache    domain.CacheRepository
	weights  []featureWeight
	cacheTTL time.Duration
}

// NewScoringService creates a scoring service with dependencies
func NewScoringService(cache domain.CacheRepository, config ScoringServiceConfig) *ScoringService {
	weights := config.Weights
	if len(weights) == 0 {
		weights = DefaultWeights
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &ScoringService{
		cache:    cache,
		weights:  orderWeights(weights),
		cacheTTL: cacheTTL,
	}
}

// orderWeights puts the known features first, in display order, and any
// additional configured features after them alphabetically.
func orderWeights(weights map[string]float64) []featureWeight {
	ordered := make([]featureWeight, 0, len(weights))
	seen := make(map[string]bool, len(weights))
	for _, name := range domain.FeatureNames {
		if wt, ok := weights[name]; ok {
			ordered = append(ordered, featureWeight{name, wt})
			seen[name] = true
		}
	}

	var extra []string
	for name := range weights {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		ordered = append(ordered, featureWeight{name, weights[name]})
	}
	return ordered
}

// ScoreWeighted applies the linear weights and rescales the total to 0-100.
// Missing features count as 0.
func (s *ScoringService) ScoreWeighted(features map[string]float64) *domain.ScoreResponse {
	breakdown := make(domain.Breakdown, 0, len(s.weights))
	var total float64
	for _, fw := range s.weights {
		x := features[fw.feature]
		contrib := x * fw.weight
		breakdown = append(breakdown, domain.BreakdownEntry{
			Feature: fw.feature,
			Value:   x,
			Weight:  fw.weight,
			Contrib: contrib,
		})
		total += contrib
	}

	normalized := math.Max(0, math.Min(100, (total+1)*50))
	return &domain.ScoreResponse{
		Score:     roundTo(normalized, 2),
		Breakdown: breakdown,
	}
}

// ScoreProfile scores features for a business type
func (s *ScoringService) ScoreProfile(features map[string]float64, bizType string) (*domain.ProfileScoreResponse, error) {
	profile, ok := LookupProfile(bizType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProfile, bizType)
	}
	return profile.Score(features), nil
}

// Score handles a single score request. A known biz_type selects profile
// scoring; an absent or unknown one falls back to the weighted model.
// Flow: check cache -> compute -> cache -> return
func (s *ScoringService) Score(ctx context.Context, request *domain.ScoreRequest) (domain.ScoreResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	features := request.Features
	if features == nil {
		features = map[string]float64{}
	}

	if request.BizType != "" {
		if _, ok := LookupProfile(request.BizType); ok {
			key := cacheKey("profile:"+request.BizType, features)
			var cached domain.ProfileScoreResponse
			if s.getFromCache(ctx, key, &cached) {
				return &cached, nil
			}
			res, err := s.ScoreProfile(features, request.BizType)
			if err != nil {
				return nil, err
			}
			s.setInCache(ctx, key, res)
			return res, nil
		}
		log.WithField("biz_type", request.BizType).Debug("no profile for business type, using weighted scoring")
	}

	key := cacheKey("weighted", features)
	var cached domain.ScoreResponse
	if s.getFromCache(ctx, key, &cached) {
		return &cached, nil
	}
	res := s.ScoreWeighted(features)
	s.setInCache(ctx, key, res)
	return res, nil
}

// ScoreBatch scores several locations. In profile mode the income percentile
// of items that lack one is computed relative to the batch.
func (s *ScoringService) ScoreBatch(ctx context.Context, request *domain.BatchRequest) (*domain.BatchResponse, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	if request.BizType != "" {
		if profile, ok := LookupProfile(request.BizType); ok {
			return s.scoreBatchProfile(request.Items, profile), nil
		}
		log.WithField("biz_type", request.BizType).Debug("no profile for business type, batch uses weighted scoring")
	}

	out := make([]domain.BatchResult, 0, len(request.Items))
	for _, item := range request.Items {
		out = append(out, batchResult(item, s.ScoreWeighted(item.Features)))
	}
	return &domain.BatchResponse{Items: out}, nil
}

func (s *ScoringService) scoreBatchProfile(items []domain.BatchItem, profile *Profile) *domain.BatchResponse {
	var incomes []float64
	for _, item := range items {
		if _, ok := item.Features["income_percentile"]; ok {
			continue
		}
		if inc, ok := incomeLookup(item.Features); ok {
			incomes = append(incomes, inc)
		}
	}

	var pmin, pmax float64
	if len(incomes) > 0 {
		pmin, pmax = incomes[0], incomes[0]
		for _, v := range incomes[1:] {
			pmin = math.Min(pmin, v)
			pmax = math.Max(pmax, v)
		}
	}

	toPct := func(v float64) float64 {
		if len(incomes) > 0 && pmax > pmin {
			return clip((v - pmin) / (pmax - pmin) * 100)
		}
		if vv := toPercent(v); vv >= 0 && vv <= 100 {
			return clip(vv)
		}
		return 50
	}

	out := make([]domain.BatchResult, 0, len(items))
	for _, item := range items {
		feat := make(map[string]float64, len(item.Features)+1)
		for k, v := range item.Features {
			feat[k] = v
		}
		if _, ok := feat["income_percentile"]; !ok {
			if inc, ok := incomeLookup(feat); ok {
				feat["income_percentile"] = toPct(inc)
			}
		}
		out = append(out, batchResult(item, profile.Score(feat)))
	}
	return &domain.BatchResponse{Items: out}
}

func batchResult(item domain.BatchItem, res domain.ScoreResult) domain.BatchResult {
	return domain.BatchResult{
		Fields:    item.Fields,
		Score:     res.TotalScore(),
		Breakdown: res.BreakdownDetail(),
	}
}

type sampleCandidate struct {
	id       string
	name     string
	features domain.FeatureRecord
}

var sampleCandidates = []sampleCandidate{
	{"A-101", "강남역 11번 출구", domain.FeatureRecord{FootTraffic: 0.9, Competitors500m: 0.3, AvgIncome: 0.8, RentCost: 0.6, Age20sRatio: 0.7}},
	{"A-202", "홍대입구역 2번 출구", domain.FeatureRecord{FootTraffic: 0.85, Competitors500m: 0.4, AvgIncome: 0.7, RentCost: 0.5, Age20sRatio: 0.8}},
	{"A-303", "서면역 1번 출구", domain.FeatureRecord{FootTraffic: 0.75, Competitors500m: 0.35, AvgIncome: 0.6, RentCost: 0.45, Age20sRatio: 0.65}},
}

// Sample returns the fixed candidate areas scored with the weighted model
func (s *ScoringService) Sample(ctx context.Context) *domain.SampleResponse {
	items := make([]domain.SampleItem, 0, len(sampleCandidates))
	for _, c := range sampleCandidates {
		res := s.ScoreWeighted(c.features.Map())
		items = append(items, domain.SampleItem{
			AreaID:    c.id,
			AreaName:  c.name,
			Features:  c.features,
			Score:     res.Score,
			Breakdown: res.Breakdown,
		})
	}
	return &domain.SampleResponse{Items: items}
}

// cacheKey builds a key from the scoring mode and the sorted features.
// Format: "score:{mode}:{k=v,...}"
func cacheKey(mode string, features map[string]float64) string {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("score:")
	b.WriteString(mode)
	b.WriteByte(':')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(features[k], 'g', -1, 64))
	}
	return b.String()
}

func (s *ScoringService) getFromCache(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return false
	}
	return true
}

func (s *ScoringService) setInCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	// Caching is best effort
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to cache score")
	}
}

// roundTo rounds half to even at the given number of decimal places
func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}
