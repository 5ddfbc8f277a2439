package domain

// SampleItem is one scored candidate area
type SampleItem struct {
	AreaID    string        `json:"area_id,omitempty"`
	AreaName  string        `json:"area_name"`
	Features  FeatureRecord `json:"features"`
	Score     float64       `json:"score"`
	Breakdown Breakdown     `json:"breakdown,omitempty"`
}

// SampleResponse is the sample list returned by the sample endpoint
type SampleResponse struct {
	Items []SampleItem `json:"items"`
}
