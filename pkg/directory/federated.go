package directory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"git.sr.ht/~jakintosh/onlook/pkg/id"
	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

// Profile is a federated identity profile as handed over by the external
// login collaborator. Raw carries the provider's full payload in memory
// only; it is excluded from JSON so it can never be persisted.
type Profile struct {
	Provider  string `json:"provider"`
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`

	Raw map[string]any `json:"-"`
}

// Allowlist decides which federated identities may hold accounts. The
// zero value denies everyone; a match on either set suffices. IDs match
// the provider's stable numeric identifier, Logins the mutable display
// name.
type Allowlist struct {
	All    bool
	IDs    map[int64]struct{}
	Logins map[string]struct{}
}

// Allows reports whether profile passes the policy.
func (a Allowlist) Allows(profile Profile) bool {
	if a.All {
		return true
	}
	if _, ok := a.IDs[profile.ID]; ok {
		return true
	}
	if _, ok := a.Logins[profile.Login]; ok {
		return true
	}
	return false
}

// FindOrCreateFederated resolves a federated identity to its account,
// creating the account on first sight. Denied identities resolve to
// ErrAccountNotFound, indistinguishable from absence.
//
// Two concurrent first-logins for the same identity may race and create
// two accounts; the last mapping write wins and the loser is orphaned.
// There is no lock to prevent this; accepted limitation.
func (d *Directory) FindOrCreateFederated(
	ctx context.Context,
	profile Profile,
	policy Allowlist,
) (
	*PublicAccount,
	error,
) {
	if !policy.Allows(profile) {
		return nil, fmt.Errorf("%w: identity not allowed", ErrAccountNotFound)
	}

	identityKey := IdentityKey(profile.Provider, profile.ID)
	target, err := d.store.Get(ctx, identityKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: failed to read mapping '%s': %v", ErrInternal, identityKey, err)
	}

	if err == nil {
		account, err := d.loadAccount(ctx, string(target))
		if err == nil {
			return account.Public(), nil
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		// mapping exists but its account is gone; recover by creating a
		// fresh account and repointing the mapping
		log.Printf("directory: dangling identity mapping '%s' -> '%s'; recreating account\n",
			identityKey, target)
	}

	accountKey, err := d.unusedAccountKey(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := profile
	sanitized.Raw = nil

	account := &Account{
		AccountID:  accountKey[len(accountKeyPrefix):],
		Identities: Identities{Federated: &sanitized},
	}
	data, err := encodeAccount(account)
	if err != nil {
		return nil, err
	}

	batch := d.store.Batch()
	batch.Put(accountKey, data)
	batch.Put(identityKey, []byte(accountKey))
	if err := batch.Write(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to create account: %v", ErrInternal, err)
	}

	return account.Public(), nil
}

// unusedAccountKey draws random account IDs until one is confirmed
// absent from the store. Collisions are astronomically unlikely but
// checked, not assumed.
func (d *Directory) unusedAccountKey(ctx context.Context) (string, error) {
	for {
		accountID, err := id.NewAccountID()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInternal, err)
		}

		accountKey := AccountKey(accountID)
		_, err = d.store.Get(ctx, accountKey)
		if errors.Is(err, store.ErrNotFound) {
			return accountKey, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: failed to check account key: %v", ErrInternal, err)
		}
	}
}
