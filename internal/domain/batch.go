package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ItemField is one client-supplied key of a batch item, kept as raw JSON
type ItemField struct {
	Key   string
	Value json.RawMessage
}

// ItemFields keeps a batch item's non-feature keys in document order
type ItemFields []ItemField

// Get returns the raw value of a key
func (f ItemFields) Get(key string) (json.RawMessage, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// BatchItem is one location submitted for batch scoring. Every key other
// than "features" is echoed back untouched.
type BatchItem struct {
	Fields   ItemFields
	Features FeatureMap
}

// UnmarshalJSON splits the item into its features and its passthrough keys
func (it *BatchItem) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return fmt.Errorf("%w: batch item must be an object", ErrInvalidRequest)
	}

	var item BatchItem
	seen := make(map[string]int)
	var err error
	result.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == "features" {
			item.Features = nil
			err = item.Features.UnmarshalJSON([]byte(value.Raw))
			return err == nil
		}
		field := ItemField{Key: name, Value: json.RawMessage(value.Raw)}
		if i, ok := seen[name]; ok {
			item.Fields[i] = field
			return true
		}
		seen[name] = len(item.Fields)
		item.Fields = append(item.Fields, field)
		return true
	})
	if err != nil {
		return err
	}
	*it = item
	return nil
}

// BatchRequest scores several locations at once
type BatchRequest struct {
	BizType string      `json:"biz_type,omitempty"`
	Items   []BatchItem `json:"items"`
}

// BatchResult is a batch item without its features, plus its score
type BatchResult struct {
	Fields    ItemFields
	Score     float64
	Breakdown interface{}
}

// MarshalJSON writes the passthrough keys in their original order followed
// by score and breakdown. Client keys named score or breakdown are replaced.
func (r BatchResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, field := range r.Fields {
		if field.Key == "score" || field.Key == "breakdown" {
			continue
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(field.Value)
		buf.WriteByte(',')
	}

	score, err := json.Marshal(r.Score)
	if err != nil {
		return nil, err
	}
	breakdown, err := json.Marshal(r.Breakdown)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"score":`)
	buf.Write(score)
	buf.WriteString(`,"breakdown":`)
	buf.Write(breakdown)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BatchResponse is the batch endpoint's body
type BatchResponse struct {
	Items []BatchResult `json:"items"`
}
