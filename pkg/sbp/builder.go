package sbp

import "encoding/json"

// MessageBuilder assembles messages in their JSON form, mostly for tests and
// fixtures.
type MessageBuilder struct {
	msg    *Message
	values map[string]interface{}
}

func NewMessageBuilder(kind Kind) *MessageBuilder {
	return &MessageBuilder{
		msg:    &Message{Type: kind},
		values: make(map[string]interface{}),
	}
}

func (b *MessageBuilder) WithSender(sender uint16) *MessageBuilder {
	b.msg.Sender = sender
	return b
}

func (b *MessageBuilder) WithField(name string, value interface{}) *MessageBuilder {
	b.values[name] = value
	return b
}

// WithHeaderTime sets header.t, as carried by observation and OSR messages.
func (b *MessageBuilder) WithHeaderTime(t GpsTime) *MessageBuilder {
	return b.WithField("header", map[string]interface{}{
		"t":     map[string]interface{}{"wn": t.WN, "tow": t.TOW, "ns_residual": 0},
		"n_obs": 16,
	})
}

// WithToe sets common.toe, as carried by ephemerides.
func (b *MessageBuilder) WithToe(t GpsTime) *MessageBuilder {
	return b.WithField("common", map[string]interface{}{
		"toe":   map[string]interface{}{"wn": t.WN, "tow": t.TOW},
		"valid": 1,
	})
}

// WithLegacyToe sets the flat toe_wn/toe_tow pair of the oldest ephemerides.
func (b *MessageBuilder) WithLegacyToe(wn uint16, tow float64) *MessageBuilder {
	b.values["toe_wn"] = wn
	b.values["toe_tow"] = tow
	return b
}

// WithNMCT sets t_nmct, as carried by the ionosphere model.
func (b *MessageBuilder) WithNMCT(t GpsTime) *MessageBuilder {
	return b.WithField("t_nmct", map[string]interface{}{"wn": t.WN, "tow": t.TOW})
}

// Build marshals the collected values. It panics on values that cannot be
// rendered as JSON.
func (b *MessageBuilder) Build() *Message {
	fields := make(map[string]json.RawMessage, len(b.values)+2)
	for name, v := range b.values {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		fields[name] = raw
	}
	msg := &Message{Type: b.msg.Type, Sender: b.msg.Sender, fields: fields}
	rawType, _ := json.Marshal(uint16(msg.Type))
	rawSender, _ := json.Marshal(msg.Sender)
	fields[FieldMsgType] = rawType
	fields[FieldSender] = rawSender
	return msg
}
