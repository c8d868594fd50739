package sbp

import (
	"encoding/json"
	"math"

	pkgerrors "sbpzip/pkg/errors"
)

type epochFields struct {
	WN  *float64 `json:"wn"`
	TOW *float64 `json:"tow"`
}

func (e epochFields) gpsTime() (GpsTime, bool) {
	return gpsTimeOf(e.WN, e.TOW)
}

type headerFields struct {
	T *epochFields `json:"t"`
}

type commonFields struct {
	Toe *epochFields `json:"toe"`
}

type legacyToeFields struct {
	ToeWN  *float64 `json:"toe_wn"`
	ToeTOW *float64 `json:"toe_tow"`
}

func gpsTimeOf(wn, tow *float64) (GpsTime, bool) {
	if wn == nil || tow == nil {
		return GpsTime{}, false
	}
	if *wn < 0 || *wn > math.MaxUint16 || *tow < 0 || *tow > math.MaxUint32 {
		return GpsTime{}, false
	}
	return GpsTime{WN: uint16(*wn), TOW: uint32(*tow)}, true
}

// ExtractGpsTime returns the epoch msg belongs to. Kinds without their own
// clock return fallback, the last time seen in the merged stream. It never
// modifies msg.
func ExtractGpsTime(msg *Message, fallback GpsTime) (GpsTime, error) {
	source := msg.Type.TimeSource()

	var (
		t  GpsTime
		ok bool
	)
	switch source {
	case TimeSourceInherited:
		return fallback, nil
	case TimeSourceHeader:
		var h headerFields
		if decodeField(msg, "header", &h) && h.T != nil {
			t, ok = h.T.gpsTime()
		}
	case TimeSourceEphemeris:
		var c commonFields
		if decodeField(msg, "common", &c) && c.Toe != nil {
			t, ok = c.Toe.gpsTime()
		}
	case TimeSourceEphemerisLegacy:
		var l legacyToeFields
		wn, hasWN := msg.Field("toe_wn")
		tow, hasTOW := msg.Field("toe_tow")
		if hasWN && hasTOW &&
			json.Unmarshal(wn, &l.ToeWN) == nil &&
			json.Unmarshal(tow, &l.ToeTOW) == nil {
			t, ok = gpsTimeOf(l.ToeWN, l.ToeTOW)
		}
	case TimeSourceNMCT:
		var e epochFields
		if decodeField(msg, "t_nmct", &e) {
			t, ok = e.gpsTime()
		}
	default:
		return GpsTime{}, pkgerrors.ErrUnclassifiedKind.
			WithDetail("msg_type", msg.Type.String())
	}

	if !ok {
		return GpsTime{}, pkgerrors.ErrMissingTimestamp.
			WithDetail("msg_type", msg.Type.String()).
			WithDetail("time_source", source.String())
	}
	return t, nil
}

func decodeField(msg *Message, name string, v interface{}) bool {
	raw, ok := msg.Field(name)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
