package allowlist_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/onlook/internal/allowlist"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

func writePolicy(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
}

func TestStatic_Policy(t *testing.T) {
	t.Parallel()

	provider := allowlist.Static(directory.Allowlist{All: true})
	if !provider.Policy().Allows(directory.Profile{Login: "anyone"}) {
		t.Error("expected allow-all static policy to allow")
	}

	denying := allowlist.Static(directory.Allowlist{})
	if denying.Policy().Allows(directory.Profile{Login: "anyone"}) {
		t.Error("expected zero static policy to deny")
	}
}

func TestNewProvider_AllowAll(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allowlist.json")
	writePolicy(t, path, `{"all": true}`)

	provider, err := allowlist.NewProvider(path)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if !provider.Policy().Allows(directory.Profile{ID: 1, Login: "anyone"}) {
		t.Error("expected allow-all policy to allow")
	}
}

func TestNewProvider_Sets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allowlist.json")
	writePolicy(t, path, `{"ids": [42], "logins": ["carol"]}`)

	provider, err := allowlist.NewProvider(path)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	policy := provider.Policy()
	if !policy.Allows(directory.Profile{ID: 42, Login: "someone-else"}) {
		t.Error("expected match on stable id to allow")
	}
	if !policy.Allows(directory.Profile{ID: 7, Login: "carol"}) {
		t.Error("expected match on login to allow")
	}
	if policy.Allows(directory.Profile{ID: 7, Login: "mallory"}) {
		t.Error("expected unlisted identity to be denied")
	}
}

func TestNewProvider_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allowlist.json")
	if _, err := allowlist.NewProvider(path); err == nil {
		t.Fatal("expected error for missing policy file")
	}
}

func TestNewProvider_BadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allowlist.json")
	writePolicy(t, path, `not json`)

	if _, err := allowlist.NewProvider(path); err == nil {
		t.Fatal("expected error for unparseable policy file")
	}
}

func TestProvider_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "allowlist.json")
	writePolicy(t, path, `{"logins": ["alice"]}`)

	provider, err := allowlist.NewProvider(path)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	writePolicy(t, path, `{"logins": ["alice", "bob"]}`)

	// reload is debounced; poll until the new policy lands
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if provider.Policy().Allows(directory.Profile{Login: "bob"}) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("policy never picked up the file change")
}
