package sbp

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage_Bare(t *testing.T) {
	line := `{"msg_type": 74, "sender": 1234, "header": {"t": {"wn": 2000, "tow": 1000}, "n_obs": 32}, "obs": []}`

	msg, err := ParseMessage([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, KindObs, msg.Type)
	assert.Equal(t, uint16(1234), msg.Sender)

	raw, ok := msg.Field("obs")
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestParseMessage_Envelope(t *testing.T) {
	line := `{"time": "2018-01-01T00:00:00", "delta": 0, "data": {"msg_type": 144, "sender": 0, "t_nmct": {"wn": 1990, "tow": 0}}}`

	msg, err := ParseMessage([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, KindIono, msg.Type)
	assert.Equal(t, uint16(0), msg.Sender)

	_, ok := msg.Field("time")
	assert.False(t, ok, "envelope fields are not part of the message")
}

func TestParseMessage_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "not json", line: `msg_type=74`},
		{name: "array", line: `[1, 2]`},
		{name: "null", line: `null`},
		{name: "missing msg_type", line: `{"sender": 1}`},
		{name: "missing sender", line: `{"msg_type": 74}`},
		{name: "msg_type out of range", line: `{"msg_type": 70000, "sender": 1}`},
		{name: "negative sender", line: `{"msg_type": 74, "sender": -1}`},
		{name: "envelope data not object", line: `{"data": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.line))
			assert.Error(t, err)
		})
	}
}

func TestMessage_MarshalRoundTrip(t *testing.T) {
	line := `{"msg_type":74,"sender":1234,"header":{"n_obs":32,"t":{"ns_residual":0,"tow":1000,"wn":2000}},"obs":[{"P":1}]}`

	msg, err := ParseMessage([]byte(line))
	require.NoError(t, err)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, line, string(out))
}

func TestMessage_SenderRewriteRecomputesCRC(t *testing.T) {
	payload := []byte{0x10, 0x20, 0x30, 0x40}
	encoded := base64.StdEncoding.EncodeToString(payload)

	msg := NewMessageBuilder(KindBasePosECEF).
		WithSender(42).
		WithField(FieldPayload, encoded).
		WithField(FieldLength, len(payload)).
		WithField(FieldCRC, FrameCRC(KindBasePosECEF, 42, payload)).
		Build()

	msg.Sender = 0
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded struct {
		Sender uint16 `json:"sender"`
		CRC    uint16 `json:"crc"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, uint16(0), decoded.Sender)
	assert.Equal(t, FrameCRC(KindBasePosECEF, 0, payload), decoded.CRC)
	assert.NotEqual(t, FrameCRC(KindBasePosECEF, 42, payload), decoded.CRC)
}

func TestMessage_CloneIsIndependent(t *testing.T) {
	msg := NewMessageBuilder(KindObs).WithSender(5).Build()
	clone := msg.Clone()
	clone.Sender = 0

	assert.Equal(t, uint16(5), msg.Sender)
	assert.Equal(t, uint16(0), clone.Sender)
}

func TestMessage_Decoded(t *testing.T) {
	msg := NewMessageBuilder(KindObs).WithSender(9).WithHeaderTime(GpsTime{WN: 3, TOW: 4}).Build()
	msg.Sender = 0

	decoded, err := msg.Decoded()
	require.NoError(t, err)
	assert.Equal(t, int64(0), decoded[FieldSender])
	assert.Equal(t, int64(KindObs), decoded[FieldMsgType])
	assert.Contains(t, decoded, "header")
}

func TestCRC16(t *testing.T) {
	assert.Equal(t, uint16(0x31C3), crc16(0, []byte("123456789")))
}
