package sbp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	FieldMsgType = "msg_type"
	FieldSender  = "sender"
	FieldPayload = "payload"
	FieldCRC     = "crc"
	FieldLength  = "length"

	envelopeData = "data"
)

// Message is one SBP message in its JSON log rendering. Only msg_type and
// sender are decoded eagerly; every other field is kept raw so the record
// re-serializes without loss.
type Message struct {
	Type   Kind
	Sender uint16
	fields map[string]json.RawMessage
}

// ParseMessage decodes a single JSON log line. Both bare messages and logger
// envelopes of the form {"time": ..., "data": {...}} are accepted.
func ParseMessage(line []byte) (*Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode record: not a JSON object")
	}

	if _, ok := fields[FieldMsgType]; !ok {
		if data, ok := fields[envelopeData]; ok {
			fields = nil
			if err := json.Unmarshal(data, &fields); err != nil {
				return nil, fmt.Errorf("decode envelope data: %w", err)
			}
			if fields == nil {
				return nil, fmt.Errorf("decode envelope data: not a JSON object")
			}
		}
	}

	msg := &Message{fields: fields}

	rawType, ok := fields[FieldMsgType]
	if !ok {
		return nil, fmt.Errorf("record has no %s", FieldMsgType)
	}
	var msgType uint16
	if err := json.Unmarshal(rawType, &msgType); err != nil {
		return nil, fmt.Errorf("decode %s: %w", FieldMsgType, err)
	}
	msg.Type = Kind(msgType)

	rawSender, ok := fields[FieldSender]
	if !ok {
		return nil, fmt.Errorf("record has no %s", FieldSender)
	}
	if err := json.Unmarshal(rawSender, &msg.Sender); err != nil {
		return nil, fmt.Errorf("decode %s: %w", FieldSender, err)
	}

	return msg, nil
}

// Field returns the raw JSON of a top-level field.
func (m *Message) Field(name string) (json.RawMessage, bool) {
	raw, ok := m.fields[name]
	return raw, ok
}

// Decoded returns the message fields as generic JSON values, msg_type and
// sender reflecting the current in-memory values.
func (m *Message) Decoded() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(m.fields))
	for name, raw := range m.fields {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", name, err)
		}
		out[name] = v
	}
	out[FieldMsgType] = int64(m.Type)
	out[FieldSender] = int64(m.Sender)
	return out, nil
}

// Clone returns a copy that can be mutated independently.
func (m *Message) Clone() *Message {
	fields := make(map[string]json.RawMessage, len(m.fields))
	for k, v := range m.fields {
		fields[k] = v
	}
	return &Message{Type: m.Type, Sender: m.Sender, fields: fields}
}

// MarshalJSON renders the message as a single JSON object. When the record
// carries a framed payload the CRC is recomputed over the current sender.
func (m *Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.fields)+2)
	for k, v := range m.fields {
		out[k] = v
	}

	rawType, err := json.Marshal(uint16(m.Type))
	if err != nil {
		return nil, err
	}
	out[FieldMsgType] = rawType

	rawSender, err := json.Marshal(m.Sender)
	if err != nil {
		return nil, err
	}
	out[FieldSender] = rawSender

	if _, hasCRC := out[FieldCRC]; hasCRC {
		if crc, ok, err := m.frameCRC(); err != nil {
			return nil, err
		} else if ok {
			rawCRC, err := json.Marshal(crc)
			if err != nil {
				return nil, err
			}
			out[FieldCRC] = rawCRC
		}
	}

	return json.Marshal(out)
}

func (m *Message) frameCRC() (uint16, bool, error) {
	rawPayload, ok := m.fields[FieldPayload]
	if !ok {
		return 0, false, nil
	}
	var encoded string
	if err := json.Unmarshal(rawPayload, &encoded); err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", FieldPayload, err)
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", FieldPayload, err)
	}
	return FrameCRC(m.Type, m.Sender, payload), true, nil
}
