// Package directory implements the user directory: canonical account
// records plus the secondary indexes that translate federated identities
// and API token secrets back to accounts. Every record lives in the
// injected ordered key-value store; multi-key updates go through one
// atomic batch so a secondary index entry is never visible without its
// primary record.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

var (
	// ErrAccountNotFound covers every expected absence: missing accounts,
	// unresolvable identity or token keys, and allowlist denials. The
	// cases are deliberately indistinguishable so lookups don't leak
	// which identities exist.
	ErrAccountNotFound = errors.New("account not found")
	ErrInternal        = errors.New("internal error")
)

const (
	accountKeyPrefix  = "account/"
	identityKeyPrefix = "identity/"
	tokenKeyPrefix    = "token/"
)

// AccountKey returns the store key of an account record.
func AccountKey(accountID string) string {
	return accountKeyPrefix + accountID
}

// IdentityKey returns the store key of a federated identity mapping.
// The stable numeric provider ID is the index term, not the mutable
// login name.
func IdentityKey(provider string, stableID int64) string {
	return fmt.Sprintf("%s%s/%d", identityKeyPrefix, provider, stableID)
}

// TokenKey returns the store key of an API token mapping.
func TokenKey(secret string) string {
	return tokenKeyPrefix + secret
}

// Directory resolves account, identity, and token keys to canonical
// accounts and manages token issuance. All operations go through the
// injected store; Directory itself holds no state.
type Directory struct {
	store store.Store
}

func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// ResolveAccount resolves any of the three key kinds to the full account
// record. Identity and token keys indirect exactly one level: their
// stored value is the account key. Deeper chains are corruption and
// resolve to nothing.
func (d *Directory) ResolveAccount(
	ctx context.Context,
	key string,
) (
	*Account,
	error,
) {
	if strings.HasPrefix(key, accountKeyPrefix) {
		return d.loadAccount(ctx, key)
	}

	if strings.HasPrefix(key, identityKeyPrefix) || strings.HasPrefix(key, tokenKeyPrefix) {
		target, err := d.store.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read mapping '%s': %v", ErrInternal, key, err)
		}

		accountKey := string(target)
		if !strings.HasPrefix(accountKey, accountKeyPrefix) {
			log.Printf("directory: mapping '%s' points at non-account key '%s'\n", key, accountKey)
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
		}
		return d.loadAccount(ctx, accountKey)
	}

	return nil, fmt.Errorf("%w: unrecognized key '%s'", ErrAccountNotFound, key)
}

// ResolveAccountSafe is ResolveAccount without the token list. The
// returned type has no token field at all, so records that cross this
// boundary cannot leak secrets.
func (d *Directory) ResolveAccountSafe(
	ctx context.Context,
	key string,
) (
	*PublicAccount,
	error,
) {
	account, err := d.ResolveAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	return account.Public(), nil
}

func (d *Directory) loadAccount(
	ctx context.Context,
	accountKey string,
) (
	*Account,
	error,
) {
	data, err := d.store.Get(ctx, accountKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountKey)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read account '%s': %v", ErrInternal, accountKey, err)
	}

	account, err := decodeAccount(accountKey, data)
	if err != nil {
		log.Printf("directory: corrupt account record at '%s': %v\n", accountKey, err)
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountKey)
	}
	return account, nil
}
