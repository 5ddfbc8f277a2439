package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Feature names used by the weighted scorer and the dashboard form
const (
	FeatureFootTraffic     = "foot_traffic"
	FeatureCompetitors500m = "competitors_500m"
	FeatureAvgIncome       = "avg_income"
	FeatureRentCost        = "rent_cost"
	FeatureAge20sRatio     = "age_20s_ratio"
)

// FeatureNames lists the dashboard features in display order
var FeatureNames = []string{
	FeatureFootTraffic,
	FeatureCompetitors500m,
	FeatureAvgIncome,
	FeatureRentCost,
	FeatureAge20sRatio,
}

// FeatureRecord is the fixed set of numeric inputs describing a location
type FeatureRecord struct {
	FootTraffic     float64 `json:"foot_traffic"`
	Competitors500m float64 `json:"competitors_500m"`
	AvgIncome       float64 `json:"avg_income"`
	RentCost        float64 `json:"rent_cost"`
	Age20sRatio     float64 `json:"age_20s_ratio"`
}

// Get returns the value of a named feature
func (f FeatureRecord) Get(name string) (float64, bool) {
	switch name {
	case FeatureFootTraffic:
		return f.FootTraffic, true
	case FeatureCompetitors500m:
		return f.Competitors500m, true
	case FeatureAvgIncome:
		return f.AvgIncome, true
	case FeatureRentCost:
		return f.RentCost, true
	case FeatureAge20sRatio:
		return f.Age20sRatio, true
	}
	return 0, false
}

// Set assigns a named feature; it reports false for names outside the record
func (f *FeatureRecord) Set(name string, value float64) bool {
	switch name {
	case FeatureFootTraffic:
		f.FootTraffic = value
	case FeatureCompetitors500m:
		f.Competitors500m = value
	case FeatureAvgIncome:
		f.AvgIncome = value
	case FeatureRentCost:
		f.RentCost = value
	case FeatureAge20sRatio:
		f.Age20sRatio = value
	default:
		return false
	}
	return true
}

// Values returns the feature values in FeatureNames order
func (f FeatureRecord) Values() []float64 {
	return []float64{f.FootTraffic, f.Competitors500m, f.AvgIncome, f.RentCost, f.Age20sRatio}
}

// Map converts the record into the open feature map accepted by the scorers
func (f FeatureRecord) Map() map[string]float64 {
	m := make(map[string]float64, len(FeatureNames))
	for i, v := range f.Values() {
		m[FeatureNames[i]] = v
	}
	return m
}

// FeatureMap is an open set of named feature values as sent by API clients.
// Values are coerced the way a numeric cast would; nulls are left out.
type FeatureMap map[string]float64

// UnmarshalJSON decodes a features object leniently
func (f *FeatureMap) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*f = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("%w: features must be an object", ErrInvalidRequest)
	}

	out := FeatureMap{}
	var err error
	result.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		v, ok := featureValue(value)
		if !ok {
			err = fmt.Errorf("%w: feature %q is not a number: %s", ErrInvalidRequest, key.String(), value.Raw)
			return false
		}
		out[key.String()] = v
		return true
	})
	if err != nil {
		return err
	}
	*f = out
	return nil
}

func featureValue(value gjson.Result) (float64, bool) {
	var v float64
	switch value.Type {
	case gjson.Number:
		v = value.Num
	case gjson.True:
		v = 1
	case gjson.False:
		v = 0
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
