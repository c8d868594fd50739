package sbp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlierIndex(t *testing.T) {
	tests := []struct {
		name string
		a    GpsTime
		b    GpsTime
		want int
	}{
		{name: "earlier week", a: GpsTime{WN: 1900, TOW: 500}, b: GpsTime{WN: 1901, TOW: 0}, want: 0},
		{name: "later week", a: GpsTime{WN: 1902, TOW: 0}, b: GpsTime{WN: 1901, TOW: 500}, want: 1},
		{name: "earlier tow", a: GpsTime{WN: 1901, TOW: 100}, b: GpsTime{WN: 1901, TOW: 200}, want: 0},
		{name: "later tow", a: GpsTime{WN: 1901, TOW: 300}, b: GpsTime{WN: 1901, TOW: 200}, want: 1},
		{name: "tie resolves to b", a: GpsTime{WN: 1901, TOW: 200}, b: GpsTime{WN: 1901, TOW: 200}, want: 1},
		{name: "both zero", a: GpsTime{}, b: GpsTime{}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EarlierIndex(tt.a, tt.b))
		})
	}
}

func TestAtOrPastThreshold(t *testing.T) {
	prev := GpsTime{WN: 2000, TOW: 1000}

	tests := []struct {
		name    string
		current GpsTime
		minSep  float64
		want    bool
	}{
		{name: "same epoch passes", current: prev, minSep: 50, want: true},
		{name: "too close", current: GpsTime{WN: 2000, TOW: 1020}, minSep: 50, want: false},
		{name: "exactly at separation", current: GpsTime{WN: 2000, TOW: 1050}, minSep: 50, want: true},
		{name: "past separation", current: GpsTime{WN: 2000, TOW: 1200}, minSep: 50, want: true},
		{name: "next week", current: GpsTime{WN: 2001, TOW: 0}, minSep: 50, want: true},
		{name: "previous week", current: GpsTime{WN: 1999, TOW: 5000}, minSep: 50, want: false},
		{name: "earlier tow same week", current: GpsTime{WN: 2000, TOW: 900}, minSep: 0, want: false},
		{name: "zero separation later tow", current: GpsTime{WN: 2000, TOW: 1001}, minSep: 0, want: true},
		{name: "fractional separation", current: GpsTime{WN: 2000, TOW: 1334}, minSep: 333.33, want: true},
		{name: "fractional separation short", current: GpsTime{WN: 2000, TOW: 1333}, minSep: 333.33, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AtOrPastThreshold(tt.current, prev, tt.minSep))
		})
	}
}

func TestGpsTimeBefore(t *testing.T) {
	assert.True(t, GpsTime{WN: 1, TOW: 9}.Before(GpsTime{WN: 2, TOW: 0}))
	assert.False(t, GpsTime{WN: 2, TOW: 0}.Before(GpsTime{WN: 2, TOW: 0}))
	assert.Equal(t, "2:150", GpsTime{WN: 2, TOW: 150}.String())
}
