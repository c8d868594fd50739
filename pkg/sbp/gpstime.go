package sbp

import "fmt"

// GpsTime is a GPS epoch: week number and time of week. Observation headers
// carry tow in milliseconds, ephemerides in seconds; the zipper compares the
// raw values and never converts.
type GpsTime struct {
	WN  uint16 `json:"wn"`
	TOW uint32 `json:"tow"`
}

func (t GpsTime) String() string {
	return fmt.Sprintf("%d:%d", t.WN, t.TOW)
}

// Before reports whether t is strictly earlier than u.
func (t GpsTime) Before(u GpsTime) bool {
	if t.WN != u.WN {
		return t.WN < u.WN
	}
	return t.TOW < u.TOW
}

// EarlierIndex returns 0 when a is strictly earlier than b and 1 otherwise,
// so equal times resolve to b.
func EarlierIndex(a, b GpsTime) int {
	if a.Before(b) {
		return 0
	}
	return 1
}

// AtOrPastThreshold is the base-side rate gate. It passes current when it is
// in a later week than previous, when both share week and tow exactly, or
// when current.TOW is at least minSeparation past previous.TOW.
func AtOrPastThreshold(current, previous GpsTime, minSeparation float64) bool {
	if current.WN < previous.WN {
		return false
	}
	if current.WN > previous.WN {
		return true
	}
	if current.TOW == previous.TOW {
		return true
	}
	return float64(current.TOW) >= float64(previous.TOW)+minSeparation
}
