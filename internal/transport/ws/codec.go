package ws

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/racesync/internal/model"
)

// EncodeCommand frames a command as "<name> <json>"
func EncodeCommand(cmd model.Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.CommandName(), err)
	}
	frame := make([]byte, 0, len(cmd.CommandName())+1+len(data))
	frame = append(frame, cmd.CommandName()...)
	frame = append(frame, ' ')
	return append(frame, data...), nil
}

// DecodeFrame splits an inbound frame into its event name and raw payload.
// A frame without a space is an event with an empty payload.
func DecodeFrame(frame []byte) (string, json.RawMessage, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return "", nil, fmt.Errorf("%w: empty frame", model.ErrMalformedEvent)
	}

	name, payload, found := bytes.Cut(frame, []byte(" "))
	if !found {
		return string(name), nil, nil
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) > 0 && !json.Valid(payload) {
		return "", nil, fmt.Errorf("%w: %s payload is not JSON", model.ErrMalformedEvent, name)
	}
	return string(name), json.RawMessage(payload), nil
}
