// Package sbplog reads and writes JSON SBP logs.
//
// A log holds one JSON object per line. Reader yields decoded messages one at
// a time and reports exhaustion with io.EOF; Writer renders each message back
// to a single line. Paths ending in .gz are (de)compressed on the fly.
//
// # Derived names
//
// The zip command names its side files after the input. For an input path
// the extension starts at the first dot of the file name:
//
//	logs/run1.sbp.json  ->  logs/run1_base.sbp.json
//	                        logs/run1_rover.sbp.json
//	                        logs/run1_zip.sbp.json
package sbplog
