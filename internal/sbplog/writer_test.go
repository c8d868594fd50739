package sbplog

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "sbpzip/pkg/errors"
	"sbpzip/pkg/sbp"
)

func TestWriter_OneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "stdout")

	ctx := context.Background()
	require.NoError(t, w.Write(ctx, sbp.NewMessageBuilder(sbp.KindObs).WithSender(1).WithHeaderTime(sbp.GpsTime{WN: 1, TOW: 2}).Build()))
	require.NoError(t, w.Write(ctx, sbp.NewMessageBuilder(sbp.KindIono).WithNMCT(sbp.GpsTime{WN: 1, TOW: 0}).Build()))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 2, w.Count())

	msg, err := sbp.ParseMessage([]byte(lines[1]))
	require.NoError(t, err)
	assert.Equal(t, sbp.KindIono, msg.Type)
}

func TestCreate_RoundTripGzip(t *testing.T) {
	for _, name := range []string{"out.json", "out.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			ctx := context.Background()

			want := []*sbp.Message{
				sbp.NewMessageBuilder(sbp.KindObs).WithSender(7).WithHeaderTime(sbp.GpsTime{WN: 5, TOW: 100}).Build(),
				sbp.NewMessageBuilder(sbp.KindEphemerisGPS).WithSender(0).WithToe(sbp.GpsTime{WN: 5, TOW: 7200}).Build(),
			}

			w, err := Create(path)
			require.NoError(t, err)
			for _, m := range want {
				require.NoError(t, w.Write(ctx, m))
			}
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()
			got := readAll(t, r)

			require.Len(t, got, len(want))
			for i := range want {
				wantJSON, err := want[i].MarshalJSON()
				require.NoError(t, err)
				gotJSON, err := got[i].MarshalJSON()
				require.NoError(t, err)
				if diff := cmp.Diff(string(wantJSON), string(gotJSON)); diff != "" {
					t.Errorf("record %d mismatch (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestCreate_MissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "no", "such", "dir", "out.json"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIO(err))
}
