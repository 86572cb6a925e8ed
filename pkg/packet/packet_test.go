package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnum string

func (e fakeEnum) EnumName() string { return string(e) }

func TestConstructorsAndAccessors(t *testing.T) {
	t.Parallel()

	b := NewBool("k", true)
	v, err := b.Bool()
	require.NoError(t, err)
	assert.True(t, v)
	assert.Equal(t, TypeBoolean, b.Type())
	assert.Equal(t, "k", b.Key())

	i := NewInt("k", -42)
	iv, err := i.Int()
	require.NoError(t, err)
	assert.Equal(t, -42, iv)

	f := NewFloat("k", 1.5)
	fv, err := f.Float()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), fv)

	d := NewDouble("k", 2.25)
	dv, err := d.Double()
	require.NoError(t, err)
	assert.Equal(t, 2.25, dv)

	s := NewString("k", "hello")
	sv, err := s.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", sv)

	e := NewEnum("k", fakeEnum("Warrior"))
	ev, err := e.EnumName()
	require.NoError(t, err)
	assert.Equal(t, "Warrior", ev)

	empty := NewEmpty("k")
	assert.Equal(t, TypeEmpty, empty.Type())
}

func TestAccessorTypeMismatch(t *testing.T) {
	t.Parallel()

	p := NewString("k", "hello")
	if _, err := p.Int(); err == nil {
		t.Error("Int() on a string packet did not fail")
	}
	if _, err := p.Bool(); err == nil {
		t.Error("Bool() on a string packet did not fail")
	}
	if _, err := p.Composite(); err == nil {
		t.Error("Composite() on a string packet did not fail")
	}
	if _, err := NewEmpty("k").String(); err == nil {
		t.Error("String() on an empty packet did not fail")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	packets := []Packet{
		NewEmpty("Empty"),
		NewBool("B", true),
		NewBool("B", false),
		NewInt("I", 1234567),
		NewFloat("F", -0.25),
		NewDouble("D", 3.14159265358979),
		NewString("S", "with:colons and spaces"),
		NewString("S", ""),
		NewEnum("E", fakeEnum("Turtle")),
		MustComposite("C", "a", 1, true, float32(2.5)),
	}
	for _, p := range packets {
		data, err := Marshal(p)
		require.NoError(t, err, "marshal %s", p.Key())

		got, err := Unmarshal(data)
		require.NoError(t, err, "unmarshal %s", p.Key())
		assert.Equal(t, p.Type(), got.Type())
		assert.Equal(t, p.Key(), got.Key())
		assert.Equal(t, p, got, "round trip %s/%s", p.Key(), p.Type())
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, data := range []string{
		"",
		"not json",
		`{"type":"NoSuchType","key":"k"}`,
		`{"key":"k"}`,
	} {
		if _, err := Unmarshal([]byte(data)); err == nil {
			t.Errorf("Unmarshal(%q) did not fail", data)
		}
	}
}
