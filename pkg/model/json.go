package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EachOrderedKey walks a JSON object's keys in declaration order. Plain map
// decoding would lose the order, and member declaration order is significant
// in the derived output, so loaders use this instead of map[string]T.
func EachOrderedKey(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return NewParseError("malformed object", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return NewParseError("expected JSON object", nil)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return NewParseError("malformed object key", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return NewParseError("expected string object key", nil)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return NewParseError(fmt.Sprintf("malformed value for key %q", key), err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return NewParseError("malformed object", err)
	}
	return nil
}
