package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbpzip/internal/config"
	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	pkgerrors "sbpzip/pkg/errors"
	"sbpzip/pkg/sbp"
)

func writeLog(t *testing.T, path string, msgs ...*sbp.Message) {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		b, err := m.MarshalJSON()
		require.NoError(t, err)
		buf.Write(b)
		buf.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func readLines(t *testing.T, data []byte) []*sbp.Message {
	t.Helper()
	var msgs []*sbp.Message
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := sbp.ParseMessage([]byte(line))
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
	require.NoError(t, scanner.Err())
	return msgs
}

func obs(sender uint16, tow uint32) *sbp.Message {
	return sbp.NewMessageBuilder(sbp.KindObs).
		WithSender(sender).
		WithHeaderTime(sbp.GpsTime{WN: 2000, TOW: tow}).
		Build()
}

func testConfig(rover, base string) *config.Config {
	return &config.Config{
		Input:   config.InputConfig{Rover: rover, Base: base},
		Output:  config.OutputConfig{Mode: constants.OutputModeConsole},
		Filter:  config.FilterConfig{OnError: constants.FallbackError},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *bytes.Buffer) {
	t.Helper()
	app := NewApp(cfg, logger.NopLogger())
	out := &bytes.Buffer{}
	app.stdout = out
	require.NoError(t, app.Initialize(context.Background()))
	return app, out
}

func TestRunZip_Console(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.sbp.json")
	roverPath := filepath.Join(dir, "rover.sbp.json")
	writeLog(t, basePath, obs(4242, 100), obs(4242, 300))
	writeLog(t, roverPath, obs(7, 200), obs(7, 400))

	app, out := newTestApp(t, testConfig(roverPath, basePath))
	stats, err := app.RunZip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Base.Emitted)
	assert.Equal(t, 2, stats.Rover.Emitted)

	msgs := readLines(t, out.Bytes())
	require.Len(t, msgs, 4)
	senders := []uint16{msgs[0].Sender, msgs[1].Sender, msgs[2].Sender, msgs[3].Sender}
	assert.Equal(t, []uint16{0, 7, 0, 7}, senders)
}

func TestRunZip_CombinedInputToAutoFile(t *testing.T) {
	dir := t.TempDir()
	combined := filepath.Join(dir, "session.sbp.json")
	writeLog(t, combined, obs(0, 100), obs(7, 150), obs(0, 200), obs(7, 250))

	cfg := testConfig(combined, "")
	cfg.Output = config.OutputConfig{Mode: constants.OutputModeFile, }
	app, out := newTestApp(t, cfg)

	_, err := app.RunZip(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.String())

	assert.FileExists(t, filepath.Join(dir, "session_base.sbp.json"))
	assert.FileExists(t, filepath.Join(dir, "session_rover.sbp.json"))

	zipped, err := os.ReadFile(filepath.Join(dir, "session_zip.sbp.json"))
	require.NoError(t, err)
	assert.Len(t, readLines(t, zipped), 4)
}

func TestRunZip_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "rover.json"), filepath.Join(dir, "base.json"))
	app, _ := newTestApp(t, cfg)

	_, err := app.RunZip(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIO(err))
	assert.Equal(t, pkgerrors.ExitCodeOutput, pkgerrors.ToExitCode(err))
}

func TestRunZip_Filter(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	roverPath := filepath.Join(dir, "rover.json")
	writeLog(t, basePath, obs(1, 100))
	writeLog(t, roverPath, obs(7, 50), obs(8, 60))

	cfg := testConfig(roverPath, basePath)
	cfg.Filter.Expression = `side == "base" || sender == 8`
	app, out := newTestApp(t, cfg)

	_, err := app.RunZip(context.Background())
	require.NoError(t, err)

	msgs := readLines(t, out.Bytes())
	require.Len(t, msgs, 2)
	assert.Equal(t, uint16(8), msgs[0].Sender)
	assert.Equal(t, uint16(0), msgs[1].Sender)
}

func TestInitialize_InvalidFilter(t *testing.T) {
	cfg := testConfig("rover.json", "base.json")
	cfg.Filter.Expression = "sender +"

	err := NewApp(cfg, logger.NopLogger()).Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRunSplit(t *testing.T) {
	dir := t.TempDir()
	combined := filepath.Join(dir, "log.json")
	writeLog(t, combined, obs(0, 1), obs(3, 1), obs(3, 2))

	app, _ := newTestApp(t, testConfig(combined, ""))
	stats, err := app.RunSplit(context.Background(), combined)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Base)
	assert.Equal(t, 2, stats.Rover)

	rover, err := os.ReadFile(filepath.Join(dir, "log_rover.json"))
	require.NoError(t, err)
	assert.Len(t, readLines(t, rover), 2)
}

func TestShutdown_WritesMetrics(t *testing.T) {
	cfg := testConfig("rover.json", "base.json")
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "sbpzip.prom")
	app, _ := newTestApp(t, cfg)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.FileExists(t, cfg.Metrics.Textfile)
}
