package packet

import (
	"encoding/json"
	"fmt"
)

// envelope is the JSON wire shape of a Packet. The type field
// discriminates which value field is meaningful; String, Enum and
// Composite payloads share the string field (an Enum carries its
// symbolic name, a Composite its abridged form).
type envelope struct {
	Type   string  `json:"type"`
	Key    string  `json:"key"`
	Bool   bool    `json:"bool,omitempty"`
	Int    int     `json:"int,omitempty"`
	Float  float32 `json:"float,omitempty"`
	Double float64 `json:"double,omitempty"`
	Str    string  `json:"string,omitempty"`
}

// Marshal serializes a Packet to its JSON wire form.
func Marshal(p Packet) ([]byte, error) {
	env := envelope{Type: p.typ.String(), Key: p.key}
	switch p.typ {
	case TypeBoolean:
		env.Bool = p.boolVal
	case TypeInteger:
		env.Int = p.intVal
	case TypeFloat:
		env.Float = p.floatVal
	case TypeDouble:
		env.Double = p.doubleVal
	case TypeString, TypeEnum, TypeComposite:
		env.Str = p.strVal
	case TypeEmpty:
		// key only
	default:
		return nil, fmt.Errorf("packet: cannot marshal type %v", p.typ)
	}
	return json.Marshal(env)
}

// Unmarshal parses a JSON wire form back into a Packet. A malformed
// body or unknown type name is a decode error for the caller to log
// and discard; it must never take the connection loop down.
func Unmarshal(data []byte) (Packet, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Packet{}, fmt.Errorf("packet: unmarshal: %w", err)
	}
	typ, err := parseType(env.Type)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{typ: typ, key: env.Key}
	switch typ {
	case TypeBoolean:
		p.boolVal = env.Bool
	case TypeInteger:
		p.intVal = env.Int
	case TypeFloat:
		p.floatVal = env.Float
	case TypeDouble:
		p.doubleVal = env.Double
	case TypeString, TypeEnum, TypeComposite:
		p.strVal = env.Str
	}
	return p, nil
}
