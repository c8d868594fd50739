package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbpzip/pkg/cel"
	"sbpzip/pkg/sbp"
)

func execute(t *testing.T, args ...string) {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	require.NoError(t, root.Execute())
}

func sortedLines(t *testing.T, msgs []*sbp.Message) []string {
	t.Helper()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		b, err := m.MarshalJSON()
		require.NoError(t, err)
		out[i] = string(b)
	}
	sort.Strings(out)
	return out
}

func TestZipCmd_HelpListsFilterExamples(t *testing.T) {
	example := zipCmd().Example
	for name, expr := range cel.FilterExpressionExamples {
		assert.Contains(t, example, name)
		assert.Contains(t, example, "--filter '"+expr+"'")
	}
}

func TestZipCmd_OutputNamedAuto(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, filepath.Join(dir, "base.json"), obs(4242, 100))
	writeLog(t, filepath.Join(dir, "rover.json"), obs(7, 200))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	execute(t, "zip", "rover.json", "--base", "base.json", "--output=auto", "--log-level", "error")

	zipped, err := os.ReadFile(filepath.Join(dir, "auto"))
	require.NoError(t, err)
	assert.Len(t, readLines(t, zipped), 2)
	assert.NoFileExists(t, filepath.Join(dir, "rover_zip.json"))
}

func TestZipCmd_BareOutputDerivesName(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	roverPath := filepath.Join(dir, "rover.json")
	writeLog(t, basePath, obs(4242, 100))
	writeLog(t, roverPath, obs(7, 200))

	execute(t, "zip", roverPath, "--base", basePath, "--log-level", "error", "--output")

	zipped, err := os.ReadFile(filepath.Join(dir, "rover_zip.json"))
	require.NoError(t, err)
	assert.Len(t, readLines(t, zipped), 2)
}

func TestZipCmd_CombinedLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	combinedPath := filepath.Join(dir, "session.json")
	combined := []*sbp.Message{
		sbp.NewMessageBuilder(sbp.KindBasePosECEF).WithSender(0).WithField("x", 1.0).Build(),
		obs(0, 100),
		sbp.NewMessageBuilder(sbp.KindEphemerisGPS).WithSender(0).WithToe(sbp.GpsTime{WN: 2000, TOW: 100}).Build(),
		sbp.NewMessageBuilder(sbp.KindGloBiases).WithSender(0).Build(),
		obs(9, 150),
		sbp.NewMessageBuilder(sbp.KindIono).WithSender(9).WithNMCT(sbp.GpsTime{WN: 2000, TOW: 120}).Build(),
		sbp.NewMessageBuilder(sbp.KindBasePosLLH).WithSender(9).WithField("lat", 37.0).Build(),
		obs(0, 200),
		obs(9, 250),
		obs(0, 300),
		obs(9, 400),
	}
	writeLog(t, combinedPath, combined...)

	execute(t, "zip", combinedPath, "--output", "--base-rate", "0", "--log-level", "error")

	zipped, err := os.ReadFile(filepath.Join(dir, "session_zip.json"))
	require.NoError(t, err)
	assert.Equal(t, sortedLines(t, combined), sortedLines(t, readLines(t, zipped)))
}
