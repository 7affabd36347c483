package directory_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"git.sr.ht/~jakintosh/onlook/internal/testutil"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

func TestCreateToken_ResolvesToAccount(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	accountID := env.CreateTestAccount(t, "alice")
	token, err := env.Directory.CreateToken(ctx, accountID, "laptop")
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	account, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(token))
	if err != nil {
		t.Fatalf("ResolveAccount failed: %v", err)
	}
	if account.AccountID != accountID {
		t.Errorf("expected token to resolve to '%s', got '%s'", accountID, account.AccountID)
	}
}

func TestCreateToken_MissingAccount(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	_, err := env.Directory.CreateToken(context.Background(), "nosuchaccount", "laptop")
	if !errors.Is(err, directory.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteToken_RemovesMapping(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	accountID := env.CreateTestAccount(t, "alice")
	token := env.CreateTestToken(t, accountID, "laptop")

	if err := env.Directory.DeleteToken(ctx, accountID, "laptop"); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	_, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(token))
	if !errors.Is(err, directory.ErrAccountNotFound) {
		t.Errorf("expected deleted token to resolve to nothing, got %v", err)
	}
}

func TestDeleteToken_RemovesAllSharingName(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	// names are intended-unique but not enforced; delete takes them all
	accountID := env.CreateTestAccount(t, "alice")
	first := env.CreateTestToken(t, accountID, "laptop")
	second := env.CreateTestToken(t, accountID, "laptop")
	other := env.CreateTestToken(t, accountID, "phone")

	if err := env.Directory.DeleteToken(ctx, accountID, "laptop"); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	for _, token := range []string{first, second} {
		_, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(token))
		if !errors.Is(err, directory.ErrAccountNotFound) {
			t.Errorf("expected laptop token deleted, got %v", err)
		}
	}
	if _, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(other)); err != nil {
		t.Errorf("expected phone token to survive, got %v", err)
	}
}

func TestDeleteToken_NoMatchIsNoop(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	accountID := env.CreateTestAccount(t, "alice")
	token := env.CreateTestToken(t, accountID, "laptop")

	if err := env.Directory.DeleteToken(ctx, accountID, "phone"); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	// nothing matched; the existing token is untouched
	if _, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(token)); err != nil {
		t.Errorf("expected laptop token to survive, got %v", err)
	}
}

func TestDeleteToken_NoTokensSucceeds(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	accountID := env.CreateTestAccount(t, "alice")
	if err := env.Directory.DeleteToken(context.Background(), accountID, "laptop"); err != nil {
		t.Fatalf("DeleteToken on tokenless account failed: %v", err)
	}
}

func TestDeleteToken_MissingAccount(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	err := env.Directory.DeleteToken(context.Background(), "nosuchaccount", "laptop")
	if !errors.Is(err, directory.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeleteAllTokens_EmptiesList(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	accountID := env.CreateTestAccount(t, "alice")
	laptop := env.CreateTestToken(t, accountID, "laptop")
	phone := env.CreateTestToken(t, accountID, "phone")

	if err := env.Directory.DeleteAllTokens(ctx, accountID); err != nil {
		t.Fatalf("DeleteAllTokens failed: %v", err)
	}

	names, err := env.Directory.ListTokenNames(ctx, accountID)
	if err != nil {
		t.Fatalf("ListTokenNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no token names, got %v", names)
	}

	for _, token := range []string{laptop, phone} {
		_, err := env.Directory.ResolveAccount(ctx, directory.TokenKey(token))
		if !errors.Is(err, directory.ErrAccountNotFound) {
			t.Errorf("expected token mapping deleted, got %v", err)
		}
	}
}

func TestListTokenNames_ListOrder(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	accountID := env.CreateTestAccount(t, "alice")
	env.CreateTestToken(t, accountID, "laptop")
	env.CreateTestToken(t, accountID, "phone")
	env.CreateTestToken(t, accountID, "desktop")

	names, err := env.Directory.ListTokenNames(ctx, accountID)
	if err != nil {
		t.Fatalf("ListTokenNames failed: %v", err)
	}
	if !slices.Equal(names, []string{"laptop", "phone", "desktop"}) {
		t.Errorf("expected insertion order, got %v", names)
	}
}

func TestListTokenNames_MissingAccount(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// a missing account lists as empty, not as an error
	names, err := env.Directory.ListTokenNames(context.Background(), "nosuchaccount")
	if err != nil {
		t.Fatalf("ListTokenNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}
