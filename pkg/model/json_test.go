package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEachOrderedKey(t *testing.T) {
	raw := json.RawMessage(`{"z": 1, "a": {"nested": true}, "m": "text", "b": [1, 2]}`)

	var keys []string
	err := EachOrderedKey(raw, func(key string, value json.RawMessage) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		t.Fatalf("EachOrderedKey: %v", err)
	}

	want := []string{"z", "a", "m", "b"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("key %d = %q, want %q", i, keys[i], k)
		}
	}
}

func TestEachOrderedKeyEmptyObject(t *testing.T) {
	err := EachOrderedKey(json.RawMessage(`{}`), func(string, json.RawMessage) error {
		t.Error("callback invoked for empty object")
		return nil
	})
	if err != nil {
		t.Fatalf("EachOrderedKey: %v", err)
	}
}

func TestEachOrderedKeyRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `"text"`, `{`} {
		err := EachOrderedKey(json.RawMessage(raw), func(string, json.RawMessage) error {
			return nil
		})
		if !IsCode(err, ErrCodeParse) {
			t.Errorf("EachOrderedKey(%s) = %v, want MODEL_PARSE_ERROR", raw, err)
		}
	}
}

func TestEachOrderedKeyPropagatesCallbackError(t *testing.T) {
	sentinel := errors.New("stop")
	err := EachOrderedKey(json.RawMessage(`{"a": 1, "b": 2}`), func(key string, _ json.RawMessage) error {
		if key == "b" {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected callback error propagated, got %v", err)
	}
}
