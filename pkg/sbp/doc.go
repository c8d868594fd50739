// Package sbp models the subset of Swift Binary Protocol messages needed to
// merge base and rover logs.
//
// # Log records
//
// A log is a sequence of JSON objects, one per line. Each object is either a
// bare message:
//
//	{"msg_type": 74, "sender": 1234, "header": {"t": {"wn": 2000, "tow": 1000}}, ...}
//
// or a logger envelope whose data member holds the message:
//
//	{"time": "2018-01-01T00:00:00", "data": {"msg_type": 74, ...}}
//
// # Time
//
// Messages are ordered by GpsTime, a (week number, time of week) pair. Where
// the pair lives depends on the kind:
//
//   - observations and OSR corrections: header.t
//   - ephemerides: common.toe, or toe_wn/toe_tow for the oldest GPS layouts
//   - ionosphere model: t_nmct
//   - base position and GLONASS biases: none; they inherit the last known time
//
// Kinds with no classification are never forwarded.
package sbp
