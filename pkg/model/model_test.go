package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tcases := map[string]struct {
		name    string
		wantErr error
	}{
		"simple":        {name: "johndoe", wantErr: nil},
		"mixed":         {name: "John_Doe-42", wantErr: nil},
		"max_length":    {name: strings.Repeat("a", MaxUsernameLength), wantErr: nil},
		"empty":         {name: "", wantErr: ErrUsernameEmpty},
		"too_long":      {name: strings.Repeat("a", MaxUsernameLength+1), wantErr: ErrUsernameTooLong},
		"space":         {name: "john doe", wantErr: ErrUsernameInvalidChars},
		"symbol":        {name: "john!", wantErr: ErrUsernameInvalidChars},
		"non_ascii":     {name: "jöhn", wantErr: ErrUsernameInvalidChars},
	}
	for name, tc := range tcases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateUsername(tc.name); !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tc.name, err, tc.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	for _, email := range []string{"a@b", "user@example.com", "with+tag@host.tld"} {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}
	for _, email := range []string{"", "no-at-sign", "@leading", "trailing@", strings.Repeat("a", 260) + "@b"} {
		if err := ValidateEmail(email); !errors.Is(err, ErrEmailInvalid) {
			t.Errorf("ValidateEmail(%q) = %v, want ErrEmailInvalid", email, err)
		}
	}
}

func TestClassResource(t *testing.T) {
	t.Parallel()

	if got := ClassMage.Resource(); got != ResourceMana {
		t.Errorf("ClassMage.Resource() = %v, want Mana", got)
	}
	if got := ClassWarrior.Resource(); got != ResourceEnergy {
		t.Errorf("ClassWarrior.Resource() = %v, want Energy", got)
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	for _, c := range []Class{ClassWarrior, ClassMage} {
		parsed, err := ParseClass(c.String())
		if err != nil || parsed != c {
			t.Errorf("ParseClass(%q) = %v, %v, want %v", c.String(), parsed, err, c)
		}
	}
	for _, r := range []Race{RaceRabbit, RaceTurtle} {
		parsed, err := ParseRace(r.String())
		if err != nil || parsed != r {
			t.Errorf("ParseRace(%q) = %v, %v, want %v", r.String(), parsed, err, r)
		}
	}

	// Parsing is exact, not case folded.
	if _, err := ParseClass("warrior"); err == nil {
		t.Error("ParseClass(warrior) accepted a lowercase name")
	}
	if _, err := ParseRace("Dragon"); err == nil {
		t.Error("ParseRace(Dragon) accepted an unknown name")
	}
}

func TestNewAccountDefaultCharacter(t *testing.T) {
	t.Parallel()

	acct := NewAccount("id-1", "jane@example.com", "jane")
	if acct.UsedSlots != 1 || acct.TotalSlots != DefaultCharacterSlots {
		t.Fatalf("slots = %d/%d, want 1/%d", acct.UsedSlots, acct.TotalSlots, DefaultCharacterSlots)
	}

	ch, err := acct.ActiveCharacter()
	if err != nil {
		t.Fatalf("ActiveCharacter: %v", err)
	}
	if ch.Name != "jane's character" {
		t.Errorf("default character name = %q", ch.Name)
	}
	if ch.Class != ClassWarrior || ch.Race != RaceTurtle {
		t.Errorf("default character = %v %v, want Warrior Turtle", ch.Class, ch.Race)
	}
	if ch.Level != StartingLevel || ch.MaxHealth != StartingHealth || ch.MaxResource != StartingResource {
		t.Errorf("default character stats = %d/%g/%g", ch.Level, ch.MaxHealth, ch.MaxResource)
	}

	acct.ActiveIndex = 5
	if _, err := acct.ActiveCharacter(); !errors.Is(err, ErrNoActiveCharacter) {
		t.Errorf("ActiveCharacter with bad index err = %v, want ErrNoActiveCharacter", err)
	}
}

func TestDisplayComponents(t *testing.T) {
	t.Parallel()

	ch := NewCharacter("id-1", "Pip", ClassMage, RaceRabbit)
	got := ch.DisplayComponents()
	if len(got) != 4 {
		t.Fatalf("DisplayComponents length = %d, want 4", len(got))
	}
	if got[0] != "id-1" || got[1] != "Pip" {
		t.Errorf("DisplayComponents prefix = %v %v", got[0], got[1])
	}
	if got[2] != ClassMage || got[3] != RaceRabbit {
		t.Errorf("DisplayComponents suffix = %v %v", got[2], got[3])
	}

	sheet := ch.SheetComponents()
	if len(sheet) != 8 {
		t.Fatalf("SheetComponents length = %d, want 8", len(sheet))
	}
	if sheet[4] != StartingLevel || sheet[7] != float64(StartingResource) {
		t.Errorf("SheetComponents stats = %v %v", sheet[4], sheet[7])
	}
}

func TestNewPendingRegistration(t *testing.T) {
	t.Parallel()

	p := NewPendingRegistration("a@b", "alice", "pw", "AB3DEF")
	if p.AttemptsLeft != MaxVerifyAttempts {
		t.Errorf("AttemptsLeft = %d, want %d", p.AttemptsLeft, MaxVerifyAttempts)
	}
	if p.Code != "AB3DEF" || p.Email != "a@b" || p.Username != "alice" {
		t.Errorf("unexpected pending registration: %+v", p)
	}
}
