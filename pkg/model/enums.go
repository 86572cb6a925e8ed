package model

import "fmt"

// Class is a character's combat class, which largely defines its
// combat playstyle.
type Class uint8

const (
	ClassWarrior Class = iota
	ClassMage
)

// String returns the symbolic name used on the wire.
func (c Class) String() string {
	switch c {
	case ClassWarrior:
		return "Warrior"
	case ClassMage:
		return "Mage"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// EnumName implements packet.Enum so a Class can travel inside
// composite payloads.
func (c Class) EnumName() string { return c.String() }

// ParseClass resolves a symbolic class name. Lookup is exact; an
// unknown name is a local decode error, never a crash.
func ParseClass(name string) (Class, error) {
	switch name {
	case "Warrior":
		return ClassWarrior, nil
	case "Mage":
		return ClassMage, nil
	}
	return 0, fmt.Errorf("model: unknown class %q", name)
}

// Resource returns the secondary combat resource this class draws on.
func (c Class) Resource() ResourceKind {
	if c == ClassMage {
		return ResourceMana
	}
	return ResourceEnergy
}

// Race defines a character's background and certain passive traits.
type Race uint8

const (
	RaceRabbit Race = iota
	RaceTurtle
)

func (r Race) String() string {
	switch r {
	case RaceRabbit:
		return "Rabbit"
	case RaceTurtle:
		return "Turtle"
	}
	return fmt.Sprintf("Race(%d)", uint8(r))
}

// EnumName implements packet.Enum.
func (r Race) EnumName() string { return r.String() }

// ParseRace resolves a symbolic race name.
func ParseRace(name string) (Race, error) {
	switch name {
	case "Rabbit":
		return RaceRabbit, nil
	case "Turtle":
		return RaceTurtle, nil
	}
	return 0, fmt.Errorf("model: unknown race %q", name)
}

// ResourceKind is the type of a character's secondary combat resource
// (the bar under health).
type ResourceKind uint8

const (
	ResourceMana ResourceKind = iota
	ResourceEnergy
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceMana:
		return "Mana"
	case ResourceEnergy:
		return "Energy"
	}
	return fmt.Sprintf("ResourceKind(%d)", uint8(k))
}

// EnumName implements packet.Enum.
func (k ResourceKind) EnumName() string { return k.String() }
