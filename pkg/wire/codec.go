package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Marshal serializes one wire message. Both sides know which message type to
// expect at each protocol phase, so no outer tag is written.
func Marshal(msg any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("wire: marshal %T: %w", msg, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes one wire message into msg, which must be a pointer
// to the message type expected at the current protocol phase.
func Unmarshal(data []byte, msg any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(msg); err != nil {
		return fmt.Errorf("wire: unmarshal %T: %w", msg, err)
	}
	return nil
}
