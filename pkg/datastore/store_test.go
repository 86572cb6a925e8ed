package datastore_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TripleSteak/Final-Aisle/pkg/datastore"
	"github.com/TripleSteak/Final-Aisle/pkg/model"
)

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := datastore.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("error closing database: %v", err)
		}
	})
	return st
}

func eachStore(t *testing.T, fn func(t *testing.T, st datastore.AccountStore)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		fn(t, newTestStore(t))
	})
	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		fn(t, datastore.NewMemoryStore())
	})
}

func TestCreateAccountDefaults(t *testing.T) {
	t.Parallel()

	eachStore(t, func(t *testing.T, st datastore.AccountStore) {
		acct, err := st.CreateAccount("johndoe@example.com", "johndoe", "hunter22")
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
		if acct.AccountID == "" {
			t.Fatal("CreateAccount returned an empty account ID")
		}

		want := model.Character{
			AccountID:   acct.AccountID,
			Name:        "johndoe's character",
			Class:       model.ClassWarrior,
			Race:        model.RaceTurtle,
			Level:       model.StartingLevel,
			Exp:         0,
			MaxHealth:   model.StartingHealth,
			MaxResource: model.StartingResource,
		}
		active, err := acct.ActiveCharacter()
		if err != nil {
			t.Fatalf("ActiveCharacter: %v", err)
		}
		if diff := cmp.Diff(want, active); diff != "" {
			t.Errorf("default character mismatch (-want +got):\n%s", diff)
		}
		if acct.UsedSlots != 1 || acct.TotalSlots != model.DefaultCharacterSlots {
			t.Errorf("slots = %d/%d, want 1/%d", acct.UsedSlots, acct.TotalSlots, model.DefaultCharacterSlots)
		}
	})
}

func TestCreateAccountDuplicates(t *testing.T) {
	t.Parallel()

	eachStore(t, func(t *testing.T, st datastore.AccountStore) {
		if _, err := st.CreateAccount("dupe@example.com", "dupe", "pw"); err != nil {
			t.Fatalf("first CreateAccount: %v", err)
		}

		// Uniqueness is case-insensitive on both axes.
		if _, err := st.CreateAccount("DUPE@EXAMPLE.COM", "other", "pw"); err == nil {
			t.Error("duplicate email accepted")
		}
		if _, err := st.CreateAccount("other@example.com", "DuPe", "pw"); err == nil {
			t.Error("duplicate username accepted")
		}

		// The failed creations must not have claimed the fresh halves.
		if _, taken := st.UUIDFromUsername("other"); taken {
			t.Error("username from a failed creation is registered")
		}
		if _, taken := st.UUIDFromEmail("other@example.com"); taken {
			t.Error("email from a failed creation is registered")
		}
	})
}

func TestCreateAccountRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	eachStore(t, func(t *testing.T, st datastore.AccountStore) {
		tcases := map[string]struct {
			email    string
			username string
		}{
			"empty_username":    {email: "a@example.com", username: ""},
			"bad_username":      {email: "a@example.com", username: "white space"},
			"missing_at":        {email: "not-an-email", username: "fine"},
			"username_too_long": {email: "a@example.com", username: "a_very_long_username_over_the_limit_x"},
		}
		for name, tc := range tcases {
			if _, err := st.CreateAccount(tc.email, tc.username, "pw"); err == nil {
				t.Errorf("%s: CreateAccount accepted invalid input", name)
			}
		}
	})
}

func TestLookupAndPassword(t *testing.T) {
	t.Parallel()

	eachStore(t, func(t *testing.T, st datastore.AccountStore) {
		acct, err := st.CreateAccount("carol@example.com", "Carol", "s3cret")
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}

		if id, ok := st.UUIDFromEmail("CAROL@example.COM"); !ok || id != acct.AccountID {
			t.Errorf("UUIDFromEmail = %q, %v, want %q, true", id, ok, acct.AccountID)
		}
		if id, ok := st.UUIDFromUsername("carol"); !ok || id != acct.AccountID {
			t.Errorf("UUIDFromUsername = %q, %v, want %q, true", id, ok, acct.AccountID)
		}
		if name, err := st.UsernameFor(acct.AccountID); err != nil || name != "Carol" {
			t.Errorf("UsernameFor = %q, %v, want Carol", name, err)
		}

		ok, err := st.CheckPassword(acct.AccountID, "s3cret")
		if err != nil || !ok {
			t.Errorf("CheckPassword(correct) = %v, %v, want true", ok, err)
		}
		ok, err = st.CheckPassword(acct.AccountID, "wrong")
		if err != nil || ok {
			t.Errorf("CheckPassword(wrong) = %v, %v, want false", ok, err)
		}

		if _, err := st.CheckPassword("missing-id", "pw"); !errors.Is(err, datastore.ErrAccountNotFound) {
			t.Errorf("CheckPassword(missing) err = %v, want ErrAccountNotFound", err)
		}
		if _, err := st.UsernameFor("missing-id"); !errors.Is(err, datastore.ErrAccountNotFound) {
			t.Errorf("UsernameFor(missing) err = %v, want ErrAccountNotFound", err)
		}
		if _, err := st.LoadAccount("missing-id"); !errors.Is(err, datastore.ErrAccountNotFound) {
			t.Errorf("LoadAccount(missing) err = %v, want ErrAccountNotFound", err)
		}
	})
}

func TestLoadAccountSurvivesReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := datastore.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created, err := st.CreateAccount("dave@example.com", "dave", "pw")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = datastore.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	// The in-memory indices must be rebuilt from disk.
	if id, ok := st.UUIDFromUsername("DAVE"); !ok || id != created.AccountID {
		t.Errorf("UUIDFromUsername after reopen = %q, %v, want %q, true", id, ok, created.AccountID)
	}

	loaded, err := st.LoadAccount(created.AccountID)
	if err != nil {
		t.Fatalf("LoadAccount after reopen: %v", err)
	}
	if diff := cmp.Diff(created, loaded); diff != "" {
		t.Errorf("account mismatch after reopen (-want +got):\n%s", diff)
	}
}
