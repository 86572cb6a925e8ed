// Package packet defines the application packet model: a closed tagged
// union of payload kinds, each carrying a string key that classifies
// the message.
//
// Packets never reach the wire directly; application code builds a
// typed Packet and hands it to the wire codec together with the
// session key.
package packet

import (
	"errors"
	"fmt"
)

// Type discriminates the payload kinds a Packet may carry.
type Type uint8

const (
	TypeBoolean Type = iota
	TypeComposite
	TypeDouble
	TypeEmpty
	TypeEnum
	TypeFloat
	TypeInteger
	TypeString
)

var typeNames = [...]string{
	TypeBoolean:   "Boolean",
	TypeComposite: "Composite",
	TypeDouble:    "Double",
	TypeEmpty:     "Empty",
	TypeEnum:      "Enum",
	TypeFloat:     "Float",
	TypeInteger:   "Integer",
	TypeString:    "String",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

func parseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), nil
		}
	}
	return 0, fmt.Errorf("packet: unknown packet type %q", name)
}

// Enum is implemented by enumeration values that may travel in Enum
// packets and composite payloads, serialized by symbolic name.
type Enum interface {
	EnumName() string
}

var errWrongType = errors.New("packet: payload type mismatch")

// Packet is an immutable tagged payload. The zero value is an Empty
// packet with an empty key.
type Packet struct {
	typ Type
	key string

	boolVal   bool
	intVal    int
	floatVal  float32
	doubleVal float64
	strVal    string // String value, Enum name, or abridged Composite form
}

// Type returns the payload discriminator.
func (p Packet) Type() Type { return p.typ }

// Key returns the packet key, present on every packet kind.
func (p Packet) Key() string { return p.key }

// NewEmpty builds a key-only signal packet.
func NewEmpty(key string) Packet {
	return Packet{typ: TypeEmpty, key: key}
}

// NewBool builds a Boolean packet.
func NewBool(key string, v bool) Packet {
	return Packet{typ: TypeBoolean, key: key, boolVal: v}
}

// NewInt builds an Integer packet.
func NewInt(key string, v int) Packet {
	return Packet{typ: TypeInteger, key: key, intVal: v}
}

// NewFloat builds a Float packet.
func NewFloat(key string, v float32) Packet {
	return Packet{typ: TypeFloat, key: key, floatVal: v}
}

// NewDouble builds a Double packet.
func NewDouble(key string, v float64) Packet {
	return Packet{typ: TypeDouble, key: key, doubleVal: v}
}

// NewString builds a String packet.
func NewString(key string, v string) Packet {
	return Packet{typ: TypeString, key: key, strVal: v}
}

// NewEnum builds an Enum packet carrying the value's symbolic name.
func NewEnum(key string, v Enum) Packet {
	return Packet{typ: TypeEnum, key: key, strVal: v.EnumName()}
}

// Bool returns the Boolean payload.
func (p Packet) Bool() (bool, error) {
	if p.typ != TypeBoolean {
		return false, errWrongType
	}
	return p.boolVal, nil
}

// Int returns the Integer payload.
func (p Packet) Int() (int, error) {
	if p.typ != TypeInteger {
		return 0, errWrongType
	}
	return p.intVal, nil
}

// Float returns the Float payload.
func (p Packet) Float() (float32, error) {
	if p.typ != TypeFloat {
		return 0, errWrongType
	}
	return p.floatVal, nil
}

// Double returns the Double payload.
func (p Packet) Double() (float64, error) {
	if p.typ != TypeDouble {
		return 0, errWrongType
	}
	return p.doubleVal, nil
}

// String returns the String payload.
func (p Packet) String() (string, error) {
	if p.typ != TypeString {
		return "", errWrongType
	}
	return p.strVal, nil
}

// EnumName returns the symbolic name carried by an Enum packet. The
// caller resolves it against the expected enumeration (e.g.
// model.ParseClass); an unknown name is the caller's local error.
func (p Packet) EnumName() (string, error) {
	if p.typ != TypeEnum {
		return "", errWrongType
	}
	return p.strVal, nil
}

// Composite expands the ordered value list of a Composite packet.
func (p Packet) Composite() (Composite, error) {
	if p.typ != TypeComposite {
		return Composite{}, errWrongType
	}
	values, err := Expand(p.strVal)
	if err != nil {
		return Composite{}, err
	}
	return Composite{values: values}, nil
}
