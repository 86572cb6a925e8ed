package packet

import (
	"fmt"
	"strconv"
	"strings"
)

// NewComposite builds a Composite packet from an ordered list of
// heterogeneous values. Only primitives and named enums are legal
// elements; anything else is a construction-time error.
func NewComposite(key string, values ...any) (Packet, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		s, err := stringify(v)
		if err != nil {
			return Packet{}, fmt.Errorf("packet: composite element %d: %w", i, err)
		}
		parts[i] = s
	}
	return Packet{typ: TypeComposite, key: key, strVal: Abridge(parts)}, nil
}

// MustComposite is NewComposite for elements known to be packable at
// compile time (server-built payloads of ids, floats and enums).
func MustComposite(key string, values ...any) Packet {
	p, err := NewComposite(key, values...)
	if err != nil {
		panic(err)
	}
	return p
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return x, nil
	case Enum:
		return x.EnumName(), nil
	}
	return "", fmt.Errorf("unsupported element type %T (primitives and enums only)", v)
}

// Composite is the expanded ordered value list of a Composite packet.
// Each element is independently retrievable by index and required type.
type Composite struct {
	values []string
}

// Len returns the number of elements.
func (c Composite) Len() int { return len(c.values) }

func (c Composite) at(i int) (string, error) {
	if i < 0 || i >= len(c.values) {
		return "", fmt.Errorf("packet: composite index %d out of range (len %d)", i, len(c.values))
	}
	return c.values[i], nil
}

// String returns the element at i as a string.
func (c Composite) String(i int) (string, error) {
	return c.at(i)
}

// Bool parses the element at i as a boolean.
func (c Composite) Bool(i int) (bool, error) {
	s, err := c.at(i)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(s)
}

// Int parses the element at i as an integer.
func (c Composite) Int(i int) (int, error) {
	s, err := c.at(i)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// Int64 parses the element at i as a 64-bit integer.
func (c Composite) Int64(i int) (int64, error) {
	s, err := c.at(i)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

// Float parses the element at i as a float32.
func (c Composite) Float(i int) (float32, error) {
	s, err := c.at(i)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

// Double parses the element at i as a float64.
func (c Composite) Double(i int) (float64, error) {
	s, err := c.at(i)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// Abridge condenses an ordered list of element strings into the single
// transmittable composite form:
//
//	<count>:<len1>:<len2>:...:<lenN>:<concatenated values>
func Abridge(values []string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(values)))
	b.WriteByte(':')
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
	}
	for _, v := range values {
		b.WriteString(v)
	}
	return b.String()
}

// Expand reverses Abridge: the leading colon-delimited integers (count,
// then each length) are parsed first, then the concatenated tail is
// sliced using exactly those lengths, in order.
func Expand(abridged string) ([]string, error) {
	count, rest, err := cutInt(abridged)
	if err != nil {
		return nil, fmt.Errorf("packet: composite count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("packet: negative composite count %d", count)
	}
	// Cheapest possible element is an empty one, which still costs two
	// bytes of header ("0:"). A declared count the payload cannot hold
	// is rejected before anything is allocated from it.
	if count > len(rest)/2 {
		return nil, fmt.Errorf("packet: composite count %d exceeds payload capacity", count)
	}

	lengths := make([]int, count)
	for i := range lengths {
		lengths[i], rest, err = cutInt(rest)
		if err != nil {
			return nil, fmt.Errorf("packet: composite length %d: %w", i, err)
		}
		if lengths[i] < 0 {
			return nil, fmt.Errorf("packet: negative composite length %d", lengths[i])
		}
	}

	values := make([]string, count)
	for i, n := range lengths {
		if n > len(rest) {
			return nil, fmt.Errorf("packet: composite element %d overruns payload", i)
		}
		values[i] = rest[:n]
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("packet: %d trailing bytes after composite elements", len(rest))
	}
	return values, nil
}

// cutInt parses the integer before the next colon and returns the
// remainder after it.
func cutInt(s string) (int, string, error) {
	head, rest, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("missing ':' delimiter")
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", err
	}
	return n, rest, nil
}
