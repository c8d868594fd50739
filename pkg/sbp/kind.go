package sbp

import "fmt"

// Kind is the SBP msg_type discriminant.
type Kind uint16

const (
	KindEphemerisDepA     Kind = 0x001A
	KindBasePosLLH        Kind = 0x0044
	KindEphemerisDepB     Kind = 0x0046
	KindEphemerisDepC     Kind = 0x0047
	KindBasePosECEF       Kind = 0x0048
	KindObs               Kind = 0x004A
	KindGloBiases         Kind = 0x0075
	KindEphemerisDepD     Kind = 0x0080
	KindEphemerisGPSDepE  Kind = 0x0081
	KindEphemerisSbasDepA Kind = 0x0082
	KindEphemerisGloDepA  Kind = 0x0083
	KindEphemerisSbasDepB Kind = 0x0084
	KindEphemerisGloDepB  Kind = 0x0085
	KindEphemerisGPSDepF  Kind = 0x0086
	KindEphemerisGloDepC  Kind = 0x0087
	KindEphemerisGloDepD  Kind = 0x0088
	KindEphemerisBDS      Kind = 0x0089
	KindEphemerisGPS      Kind = 0x008A
	KindEphemerisGlo      Kind = 0x008B
	KindEphemerisSbas     Kind = 0x008C
	KindEphemerisGal      Kind = 0x008D
	KindEphemerisQzss     Kind = 0x008E
	KindIono              Kind = 0x0090
	KindOsr               Kind = 0x0640
)

// TimeSource says where a kind keeps its GPS epoch.
type TimeSource int

const (
	// TimeSourceNone marks kinds the zipper knows nothing about.
	TimeSourceNone TimeSource = iota
	// TimeSourceHeader is header.t.{wn,tow}.
	TimeSourceHeader
	// TimeSourceEphemeris is common.toe.{wn,tow}.
	TimeSourceEphemeris
	// TimeSourceEphemerisLegacy is the flat toe_wn/toe_tow pair of the oldest GPS ephemerides.
	TimeSourceEphemerisLegacy
	// TimeSourceNMCT is t_nmct.{wn,tow}.
	TimeSourceNMCT
	// TimeSourceInherited kinds take the last known time of the merged stream.
	TimeSourceInherited
)

func (s TimeSource) String() string {
	switch s {
	case TimeSourceHeader:
		return "header"
	case TimeSourceEphemeris:
		return "ephemeris"
	case TimeSourceEphemerisLegacy:
		return "ephemeris_legacy"
	case TimeSourceNMCT:
		return "nmct"
	case TimeSourceInherited:
		return "inherited"
	default:
		return "none"
	}
}

// TimeSource classifies k. Every kind declared above must appear here; an
// undeclared msg_type falls through to TimeSourceNone.
func (k Kind) TimeSource() TimeSource {
	switch k {
	case KindObs, KindOsr:
		return TimeSourceHeader
	case KindEphemerisGPS,
		KindEphemerisGPSDepE,
		KindEphemerisGPSDepF,
		KindEphemerisBDS,
		KindEphemerisGal,
		KindEphemerisSbas,
		KindEphemerisSbasDepA,
		KindEphemerisSbasDepB,
		KindEphemerisQzss,
		KindEphemerisGlo,
		KindEphemerisGloDepA,
		KindEphemerisGloDepB,
		KindEphemerisGloDepC,
		KindEphemerisGloDepD:
		return TimeSourceEphemeris
	case KindEphemerisDepA,
		KindEphemerisDepB,
		KindEphemerisDepC,
		KindEphemerisDepD:
		return TimeSourceEphemerisLegacy
	case KindIono:
		return TimeSourceNMCT
	case KindBasePosLLH, KindBasePosECEF, KindGloBiases:
		return TimeSourceInherited
	default:
		return TimeSourceNone
	}
}

// Forwarded reports whether messages of kind k survive the zipper. These are
// the kinds a post-processing RTK filter consumes: observations, corrections,
// ephemerides, ionosphere and base position. QZSS ephemerides are classified
// for timing but not forwarded.
func (k Kind) Forwarded() bool {
	switch k {
	case KindObs,
		KindOsr,
		KindEphemerisGPS,
		KindEphemerisGPSDepE,
		KindEphemerisGPSDepF,
		KindEphemerisBDS,
		KindEphemerisGal,
		KindEphemerisSbasDepA,
		KindEphemerisGloDepA,
		KindEphemerisSbasDepB,
		KindEphemerisSbas,
		KindEphemerisGloDepB,
		KindEphemerisGloDepC,
		KindEphemerisGloDepD,
		KindEphemerisGlo,
		KindEphemerisDepD,
		KindEphemerisDepA,
		KindEphemerisDepB,
		KindEphemerisDepC,
		KindBasePosLLH,
		KindBasePosECEF,
		KindIono,
		KindGloBiases:
		return true
	case KindEphemerisQzss:
		return false
	default:
		return false
	}
}

var kindNames = map[Kind]string{
	KindEphemerisDepA:     "MSG_EPHEMERIS_DEP_A",
	KindBasePosLLH:        "MSG_BASE_POS_LLH",
	KindEphemerisDepB:     "MSG_EPHEMERIS_DEP_B",
	KindEphemerisDepC:     "MSG_EPHEMERIS_DEP_C",
	KindBasePosECEF:       "MSG_BASE_POS_ECEF",
	KindObs:               "MSG_OBS",
	KindGloBiases:         "MSG_GLO_BIASES",
	KindEphemerisDepD:     "MSG_EPHEMERIS_DEP_D",
	KindEphemerisGPSDepE:  "MSG_EPHEMERIS_GPS_DEP_E",
	KindEphemerisSbasDepA: "MSG_EPHEMERIS_SBAS_DEP_A",
	KindEphemerisGloDepA:  "MSG_EPHEMERIS_GLO_DEP_A",
	KindEphemerisSbasDepB: "MSG_EPHEMERIS_SBAS_DEP_B",
	KindEphemerisGloDepB:  "MSG_EPHEMERIS_GLO_DEP_B",
	KindEphemerisGPSDepF:  "MSG_EPHEMERIS_GPS_DEP_F",
	KindEphemerisGloDepC:  "MSG_EPHEMERIS_GLO_DEP_C",
	KindEphemerisGloDepD:  "MSG_EPHEMERIS_GLO_DEP_D",
	KindEphemerisBDS:      "MSG_EPHEMERIS_BDS",
	KindEphemerisGPS:      "MSG_EPHEMERIS_GPS",
	KindEphemerisGlo:      "MSG_EPHEMERIS_GLO",
	KindEphemerisSbas:     "MSG_EPHEMERIS_SBAS",
	KindEphemerisGal:      "MSG_EPHEMERIS_GAL",
	KindEphemerisQzss:     "MSG_EPHEMERIS_QZSS",
	KindIono:              "MSG_IONO",
	KindOsr:               "MSG_OSR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MSG_0x%04X", uint16(k))
}
