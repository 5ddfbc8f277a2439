package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ScoreRequest is the body of a score call
type ScoreRequest struct {
	BizType  string     `json:"biz_type,omitempty"`
	Features FeatureMap `json:"features"`
}

// ScoreResult is what a scorer produces: a weighted ScoreResponse or a
// business-type ProfileScoreResponse.
type ScoreResult interface {
	TotalScore() float64
	BreakdownDetail() interface{}
}

// BreakdownEntry is one feature's contribution to a weighted score
type BreakdownEntry struct {
	Feature string  `json:"-"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Contrib float64 `json:"contrib"`
}

// Breakdown is encoded as a JSON object keyed by feature name. Entry order is
// kept in both directions.
type Breakdown []BreakdownEntry

// Get returns the entry for a feature
func (b Breakdown) Get(feature string) (BreakdownEntry, bool) {
	for _, e := range b {
		if e.Feature == feature {
			return e, true
		}
	}
	return BreakdownEntry{}, false
}

// MarshalJSON writes the entries as an object in slice order
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Feature)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object in document order. Duplicate keys collapse
// into one entry.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*b = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("%w: breakdown is not an object", ErrMalformedResponse)
	}

	entries := Breakdown{}
	seen := make(map[string]int)
	var err error
	result.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: breakdown entry %q is not an object", ErrMalformedResponse, key.String())
			return false
		}
		entry := BreakdownEntry{
			Feature: key.String(),
			Value:   value.Get("value").Float(),
			Weight:  value.Get("weight").Float(),
			Contrib: value.Get("contrib").Float(),
		}
		// a repeated key keeps its first position and takes the later value
		if i, ok := seen[entry.Feature]; ok {
			entries[i] = entry
			return true
		}
		seen[entry.Feature] = len(entries)
		entries = append(entries, entry)
		return true
	})
	if err != nil {
		return err
	}
	*b = entries
	return nil
}

// ScoreResponse is the weighted score of one location
type ScoreResponse struct {
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`

	// Raw holds the bytes the response was decoded from, if any
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the response and keeps a copy of the raw bytes
func (r *ScoreResponse) UnmarshalJSON(data []byte) error {
	type plain ScoreResponse
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ScoreResponse(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r *ScoreResponse) TotalScore() float64          { return r.Score }
func (r *ScoreResponse) BreakdownDetail() interface{} { return r.Breakdown }

// ProfileWeights are the component weights of a business-type profile
type ProfileWeights struct {
	Base   float64 `json:"base"`
	Income float64 `json:"income"`
	Age    float64 `json:"age"`
	Gender float64 `json:"gender"`
}

// ProfileBreakdown holds the 0-100 component scores of a profile score
type ProfileBreakdown struct {
	Base    float64        `json:"base"`
	Income  float64        `json:"income"`
	Age     float64        `json:"age"`
	Gender  float64        `json:"gender"`
	Weights ProfileWeights `json:"weights"`
}

// ProfileScoreResponse is the score of one location for one business type
type ProfileScoreResponse struct {
	Score     float64          `json:"score"`
	Breakdown ProfileBreakdown `json:"breakdown"`
}

func (r *ProfileScoreResponse) TotalScore() float64          { return r.Score }
func (r *ProfileScoreResponse) BreakdownDetail() interface{} { return r.Breakdown }
