package dashboard

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sodam/backend/internal/domain"
)

// floatPrefix matches the longest leading decimal literal, as parseFloat reads it
var floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// CollectFeatures reads the five feature inputs. Blank, missing and
// non-numeric inputs read as 0.
func CollectFeatures(page *Page) domain.FeatureRecord {
	var rec domain.FeatureRecord
	for _, name := range domain.FeatureNames {
		raw, _ := page.Value(name)
		rec.Set(name, parseFloat(raw))
	}
	return rec
}

// parseFloat takes the numeric prefix of s ("12abc" is 12). Anything without
// a finite numeric prefix is 0.
func parseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' })
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
