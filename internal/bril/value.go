package bril

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the literal kinds a const can produce.
type ValueKind int

const (
	IntValue ValueKind = iota
	BoolValue
)

// Value is a Bril literal: a 32-bit integer or a boolean. It serializes
// as a bare JSON literal (7, true), not as a tagged object.
type Value struct {
	Kind ValueKind
	Int  int32
	Bool bool
}

// Int32 returns an integer literal.
func Int32(v int32) Value { return Value{Kind: IntValue, Int: v} }

// BoolOf returns a boolean literal.
func BoolOf(v bool) Value { return Value{Kind: BoolValue, Bool: v} }

func (v Value) String() string {
	if v.Kind == BoolValue {
		return strconv.FormatBool(v.Bool)
	}
	return strconv.FormatInt(int64(v.Int), 10)
}

// Equal reports literal equality: kinds and payloads must match.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == BoolValue {
		return v.Bool == o.Bool
	}
	return v.Int == o.Int
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == BoolValue {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Int)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Value{Kind: BoolValue, Bool: b}
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value{Kind: IntValue, Int: n}
		return nil
	}
	return fmt.Errorf("bril literal must be an i32 or a bool, got %s", data)
}
