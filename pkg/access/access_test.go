package access_test

import (
	"context"
	"testing"

	"git.sr.ht/~jakintosh/onlook/internal/testutil"
	"git.sr.ht/~jakintosh/onlook/pkg/access"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

func TestAuthorize_OwnerGetsFull(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	accountID := env.CreateTestAccount(t, "alice")

	level, err := env.Guard.Authorize(
		context.Background(), accountID, directory.AccountKey(accountID), "notes")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if level != access.LevelFull {
		t.Errorf("expected LevelFull for owner, got %v", level)
	}
}

func TestAuthorize_OnlookerGetsReadOnly(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	owner := env.CreateTestAccount(t, "alice")
	viewer := env.CreateTestAccount(t, "bob")
	if err := env.Index.Grant(ctx, owner, viewer, "notes"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	level, err := env.Guard.Authorize(ctx, viewer, directory.AccountKey(owner), "notes")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if level != access.LevelReadOnly {
		t.Errorf("expected LevelReadOnly for onlooker, got %v", level)
	}
}

func TestAuthorize_StrangerGetsNone(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	owner := env.CreateTestAccount(t, "alice")
	stranger := env.CreateTestAccount(t, "mallory")

	level, err := env.Guard.Authorize(ctx, stranger, directory.AccountKey(owner), "notes")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if level != access.LevelNone {
		t.Errorf("expected LevelNone for stranger, got %v", level)
	}
}

func TestAuthorize_WrongAppGetsNone(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	owner := env.CreateTestAccount(t, "alice")
	viewer := env.CreateTestAccount(t, "bob")
	if err := env.Index.Grant(ctx, owner, viewer, "notes"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	// the grant is per app namespace
	level, err := env.Guard.Authorize(ctx, viewer, directory.AccountKey(owner), "photos")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if level != access.LevelNone {
		t.Errorf("expected LevelNone for unshared app, got %v", level)
	}
}

func TestAuthorize_UnknownOwnerGetsNone(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	viewer := env.CreateTestAccount(t, "bob")

	// an unknown owner is a decision, not an error
	level, err := env.Guard.Authorize(
		context.Background(), viewer, directory.AccountKey("nosuchaccount"), "notes")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if level != access.LevelNone {
		t.Errorf("expected LevelNone for unknown owner, got %v", level)
	}
}

func TestLevel_Permits(t *testing.T) {
	t.Parallel()

	readOnly := []string{"get", "changes"}

	if !access.LevelFull.Permits("delete", readOnly) {
		t.Error("expected LevelFull to permit everything")
	}
	if !access.LevelReadOnly.Permits("get", readOnly) {
		t.Error("expected LevelReadOnly to permit a listed category")
	}
	if access.LevelReadOnly.Permits("delete", readOnly) {
		t.Error("expected LevelReadOnly to reject an unlisted category")
	}
	if access.LevelNone.Permits("get", readOnly) {
		t.Error("expected LevelNone to permit nothing")
	}
	if access.LevelReadOnly.Permits("get", nil) {
		t.Error("expected an empty policy list to permit nothing read-only")
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	for level, expected := range map[access.Level]string{
		access.LevelNone:     "none",
		access.LevelReadOnly: "read-only",
		access.LevelFull:     "full",
	} {
		if level.String() != expected {
			t.Errorf("expected '%s', got '%s'", expected, level.String())
		}
	}
}
