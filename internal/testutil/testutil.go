// Package testutil provides test environment setup and utilities for
// package tests.
package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"git.sr.ht/~jakintosh/onlook/internal/allowlist"
	"git.sr.ht/~jakintosh/onlook/internal/api"
	"git.sr.ht/~jakintosh/onlook/pkg/access"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
	"git.sr.ht/~jakintosh/onlook/pkg/onlooker"
	"git.sr.ht/~jakintosh/onlook/pkg/store"
	"git.sr.ht/~jakintosh/onlook/pkg/store/leveldb"
)

// FederatedKey is the shared secret the test router accepts on
// /api/federated.
const FederatedKey = "test-federated-key"

// distinct stable IDs for test profiles across the whole test binary
var nextStableID atomic.Int64

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	Store     store.Store
	Directory *directory.Directory
	Index     *onlooker.Index
	Guard     *access.Guard
	Router    http.Handler
}

// SetupTestEnv creates an isolated test environment over an in-memory
// store.
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	s, err := leveldb.OpenMem()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	d := directory.New(s)
	x := onlooker.New(s)

	return &TestEnv{
		Store:     s,
		Directory: d,
		Index:     x,
		Guard:     access.New(d, x),
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
// with an allow-all policy.
func SetupTestEnvWithRouter(
	t *testing.T,
) *TestEnv {
	t.Helper()
	env := SetupTestEnv(t)
	a := api.New(
		env.Directory,
		env.Index,
		env.Guard,
		allowlist.Static(directory.Allowlist{All: true}),
		FederatedKey,
	)
	env.Router = a.Router()
	return env
}

// TestProfile returns a federated profile with a fresh stable ID.
func TestProfile(login string) directory.Profile {
	return directory.Profile{
		Provider: "github",
		ID:       nextStableID.Add(1),
		Login:    login,
	}
}

// CreateTestAccount creates an account for a fresh federated identity
// and returns its account ID.
func (env *TestEnv) CreateTestAccount(
	t *testing.T,
	login string,
) string {
	t.Helper()
	account, err := env.Directory.FindOrCreateFederated(
		context.Background(),
		TestProfile(login),
		directory.Allowlist{All: true},
	)
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account.AccountID
}

// CreateTestToken issues an API token for the account and returns the
// secret.
func (env *TestEnv) CreateTestToken(
	t *testing.T,
	accountID string,
	name string,
) string {
	t.Helper()
	token, err := env.Directory.CreateToken(context.Background(), accountID, name)
	if err != nil {
		t.Fatalf("failed to create test token: %v", err)
	}
	return token
}
