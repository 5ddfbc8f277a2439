package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{0.4, "0.4"},
		{72, "72"},
		{-0.25, "-0.25"},
		{math.Copysign(0, -1), "0"},
		{70.5, "70.5"},
		{50000, "50000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{123456789012345680000, "123456789012345680000"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, jsNumber(tt.in))
		})
	}
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"one decimal contrib", 28.8, "28.800"},
		{"truncates to three places", 0.12345, "0.123"},
		{"integer", 2, "2.000"},
		{"zero", 0, "0.000"},
		{"negative", -0.06, "-0.060"},
		{"tiny negative keeps sign", -0.0001, "-0.000"},
		{"exact binary tie rounds up", 0.0625, "0.063"},
		{"carries into integer part", 0.9999, "1.000"},
		{"large", 1e21, "1e+21"},
		{"nan", math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toFixed(tt.in, 3))
		})
	}

	// 1.005 is stored just below the decimal tie
	assert.Equal(t, "1.00", toFixed(1.005, 2))
	assert.Equal(t, "3", toFixed(2.5, 0))
}
