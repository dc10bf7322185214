/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/flagstore/errors"
	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// FlagType is the type a flag definition resolves to.
type FlagType string

const (
	FlagTypeBoolean FlagType = "boolean"
	FlagTypeString  FlagType = "string"
	FlagTypeSelect  FlagType = "select"
)

// Value is a flag value: null, a boolean or a string. The zero Value is null.
// Values are comparable with == and two values are equal exactly when they
// have the same kind and payload.
type Value struct {
	kind Kind
	b    bool
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// FromAny converts a Go value into a Value. Only nil, bool and string
// (and pointers to them) are accepted.
func FromAny(v any) (Value, error) {
	switch tv := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return tv, nil
	case bool:
		return Bool(tv), nil
	case string:
		return String(tv), nil
	case *bool:
		if tv == nil {
			return Null(), nil
		}
		return Bool(*tv), nil
	case *string:
		if tv == nil {
			return Null(), nil
		}
		return String(*tv), nil
	default:
		return Null(), errors.NewValidationError("value", fmt.Sprintf("unsupported value type %T", v))
	}
}

// ParseValue interprets operator input. "true", "false" and "null" are
// matched in any case after trimming surrounding whitespace. Anything else is
// kept as a string exactly as given, whitespace included.
func ParseValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(trimmed, "true"):
		return Bool(true)
	case strings.EqualFold(trimmed, "false"):
		return Bool(false)
	case strings.EqualFold(trimmed, "null"):
		return Null()
	}
	return String(s)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and whether v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Truthy is the boolean coercion of v: null is false, a boolean is itself
// and a string is true when non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	default:
		return false
	}
}

// Equal reports whether v and other hold the same kind and payload.
func (v Value) Equal(other Value) bool { return v == other }

// Interface returns v as nil, bool or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.NewValidationError("value", fmt.Sprintf("line %d: expected a scalar", node.Line))
	}
	switch node.ShortTag() {
	case "!!null":
		*v = Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!str":
		*v = String(node.Value)
	default:
		return errors.NewValidationError("value", fmt.Sprintf("line %d: unsupported scalar %s %q", node.Line, node.ShortTag(), node.Value))
	}
	return nil
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler
func (v Value) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	switch v.kind {
	case KindBool:
		return &types.AttributeValueMemberBOOL{Value: v.b}, nil
	case KindString:
		return &types.AttributeValueMemberS{Value: v.s}, nil
	default:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler
func (v *Value) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch tv := av.(type) {
	case nil, *types.AttributeValueMemberNULL:
		*v = Null()
	case *types.AttributeValueMemberBOOL:
		*v = Bool(tv.Value)
	case *types.AttributeValueMemberS:
		*v = String(tv.Value)
	default:
		return errors.NewValidationError("value", fmt.Sprintf("unsupported attribute value %T", av))
	}
	return nil
}
