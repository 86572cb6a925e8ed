package model

// Starting stats for a freshly created character.
const (
	StartingLevel    = 1
	StartingHealth   = 10
	StartingResource = 10
)

// Character is one playable character bound to an account. Serialized
// state is limited to what other clients need to display the character;
// equipment and inventory live elsewhere.
type Character struct {
	AccountID   string
	Name        string
	Class       Class
	Race        Race
	Level       int
	Exp         int
	MaxHealth   float64
	MaxResource float64
}

// NewCharacter creates a level-one character with default stats.
func NewCharacter(accountID, name string, class Class, race Race) Character {
	return Character{
		AccountID:   accountID,
		Name:        name,
		Class:       class,
		Race:        race,
		Level:       StartingLevel,
		Exp:         0,
		MaxHealth:   StartingHealth,
		MaxResource: StartingResource,
	}
}

// DisplayComponents returns the ordered composite payload elements that
// describe this character visually to other clients: account ID, name,
// class and race.
func (c Character) DisplayComponents() []any {
	return []any{c.AccountID, c.Name, c.Class, c.Race}
}

// SheetComponents returns the ordered composite payload elements sent
// to the owning client after login: the display components plus
// progression and resource stats.
func (c Character) SheetComponents() []any {
	return []any{c.AccountID, c.Name, c.Class, c.Race, c.Level, c.Exp, c.MaxHealth, c.MaxResource}
}
