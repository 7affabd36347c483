package directory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.sr.ht/~jakintosh/onlook/internal/testutil"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

func TestFindOrCreateFederated_RoundTrip(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	profile := testutil.TestProfile("alice")
	policy := directory.Allowlist{All: true}

	first, err := env.Directory.FindOrCreateFederated(ctx, profile, policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}
	second, err := env.Directory.FindOrCreateFederated(ctx, profile, policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}

	if first.AccountID != second.AccountID {
		t.Errorf("expected same account both times, got '%s' and '%s'",
			first.AccountID, second.AccountID)
	}
}

func TestFindOrCreateFederated_EmptyAllowlistDenies(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// empty sets deny everyone; denial reads exactly like absence
	policy := directory.Allowlist{
		IDs:    map[int64]struct{}{},
		Logins: map[string]struct{}{},
	}
	_, err := env.Directory.FindOrCreateFederated(
		context.Background(), testutil.TestProfile("alice"), policy)
	if !errors.Is(err, directory.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestFindOrCreateFederated_ZeroPolicyDenies(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	_, err := env.Directory.FindOrCreateFederated(
		context.Background(), testutil.TestProfile("alice"), directory.Allowlist{})
	if !errors.Is(err, directory.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestFindOrCreateFederated_AllowedByID(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	profile := testutil.TestProfile("alice")
	policy := directory.Allowlist{
		IDs:    map[int64]struct{}{profile.ID: {}},
		Logins: map[string]struct{}{},
	}

	account, err := env.Directory.FindOrCreateFederated(context.Background(), profile, policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}
	if account.AccountID == "" {
		t.Error("expected non-empty account id")
	}
}

func TestFindOrCreateFederated_AllowedByLogin(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// a match on either set suffices; the ID set doesn't know this one
	policy := directory.Allowlist{
		IDs:    map[int64]struct{}{},
		Logins: map[string]struct{}{"alice": {}},
	}

	account, err := env.Directory.FindOrCreateFederated(
		context.Background(), testutil.TestProfile("alice"), policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}
	if account.AccountID == "" {
		t.Error("expected non-empty account id")
	}
}

func TestFindOrCreateFederated_DistinctIdentitiesDistinctAccounts(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()
	policy := directory.Allowlist{All: true}

	first, err := env.Directory.FindOrCreateFederated(ctx, testutil.TestProfile("alice"), policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}
	second, err := env.Directory.FindOrCreateFederated(ctx, testutil.TestProfile("bob"), policy)
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}

	if first.AccountID == second.AccountID {
		t.Error("expected distinct accounts for distinct identities")
	}
}

func TestFindOrCreateFederated_DanglingMappingRecovers(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	// an identity mapping pointing at a missing account is recoverable
	// corruption: creation proceeds and repoints the mapping
	profile := testutil.TestProfile("alice")
	identityKey := directory.IdentityKey(profile.Provider, profile.ID)
	if err := env.Store.Put(ctx, identityKey, []byte(directory.AccountKey("ghost"))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	account, err := env.Directory.FindOrCreateFederated(ctx, profile, directory.Allowlist{All: true})
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}
	if account.AccountID == "ghost" {
		t.Error("expected a fresh account, not the dangling target")
	}

	// the mapping now resolves to the fresh account
	resolved, err := env.Directory.ResolveAccount(ctx, identityKey)
	if err != nil {
		t.Fatalf("ResolveAccount failed: %v", err)
	}
	if resolved.AccountID != account.AccountID {
		t.Errorf("expected mapping repointed to '%s', got '%s'",
			account.AccountID, resolved.AccountID)
	}
}

func TestFindOrCreateFederated_StripsRawPayload(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	profile := testutil.TestProfile("alice")
	profile.Raw = map[string]any{"email": "alice@example.com"}

	account, err := env.Directory.FindOrCreateFederated(ctx, profile, directory.Allowlist{All: true})
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}

	// the stored record never carries the provider's raw payload
	data, err := env.Store.Get(ctx, directory.AccountKey(account.AccountID))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if strings.Contains(string(data), "alice@example.com") {
		t.Errorf("raw payload leaked into stored record: %s", data)
	}
}

func TestFindOrCreateFederated_PersistsProfile(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	ctx := context.Background()

	profile := testutil.TestProfile("alice")
	profile.Name = "Alice"
	profile.AvatarURL = "https://example.com/alice.png"

	created, err := env.Directory.FindOrCreateFederated(ctx, profile, directory.Allowlist{All: true})
	if err != nil {
		t.Fatalf("FindOrCreateFederated failed: %v", err)
	}

	account, err := env.Directory.ResolveAccount(ctx, directory.AccountKey(created.AccountID))
	if err != nil {
		t.Fatalf("ResolveAccount failed: %v", err)
	}
	federated := account.Identities.Federated
	if federated == nil {
		t.Fatal("expected a federated identity on the account")
	}
	if federated.Login != "alice" || federated.Name != "Alice" {
		t.Errorf("expected sanitized profile persisted, got %+v", federated)
	}
}
