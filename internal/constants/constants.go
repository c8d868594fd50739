package constants

import "time"

const (
	AppName   = "sbpzip"
	EnvPrefix = "SBPZIP"
)

const (
	// DefaultBaseRate is the base observation rate (Hz) kept in the zipped output.
	DefaultBaseRate = 20.0
)

const (
	SideBase  = "base"
	SideRover = "rover"
)

const (
	OutputModeConsole = "console"
	OutputModeFile    = "file"
	OutputModeKafka   = "kafka"

	// OutputAuto is what a bare --output parses to. NUL cannot occur in a
	// path, so every real file name stays available to --output=path.
	OutputAuto = "\x00"
)

const (
	SuffixBase  = "_base"
	SuffixRover = "_rover"
	SuffixZip   = "_zip"

	GzipExt = ".gz"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
	KafkaBatchSize    = 100
)

const (
	// MaxRecordSize bounds a single log line.
	MaxRecordSize = 4 * 1024 * 1024
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
	FallbackError = "error"
)
