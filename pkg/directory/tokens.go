package directory

import (
	"context"
	"errors"
	"fmt"

	"git.sr.ht/~jakintosh/onlook/pkg/id"
)

// CreateToken issues a new API token named name for the account. The
// updated account record and the token mapping are written in one batch.
//
// Concurrency hazard: two same-name creations racing through independent
// read-modify-write cycles can lose one list entry (last account write
// wins) while both mappings persist. Callers serialize same-name
// creation themselves; the store offers no optimistic check.
func (d *Directory) CreateToken(
	ctx context.Context,
	accountID string,
	name string,
) (
	string,
	error,
) {
	accountKey := AccountKey(accountID)
	account, err := d.loadAccount(ctx, accountKey)
	if err != nil {
		return "", err
	}

	// collision probability is negligible at this secret length; not checked
	secret, err := id.NewTokenSecret()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	account.APITokens = append(account.APITokens, Token{Token: secret, Name: name})
	data, err := encodeAccount(account)
	if err != nil {
		return "", err
	}

	batch := d.store.Batch()
	batch.Put(accountKey, data)
	batch.Put(TokenKey(secret), []byte(accountKey))
	if err := batch.Write(ctx); err != nil {
		return "", fmt.Errorf("%w: failed to store token: %v", ErrInternal, err)
	}

	return secret, nil
}

// DeleteToken revokes every token on the account named name. Removing a
// name with no matching tokens succeeds without writing.
func (d *Directory) DeleteToken(
	ctx context.Context,
	accountID string,
	name string,
) error {
	accountKey := AccountKey(accountID)
	account, err := d.loadAccount(ctx, accountKey)
	if err != nil {
		return err
	}
	if len(account.APITokens) == 0 {
		return nil
	}

	var kept []Token
	var removed []Token
	for _, token := range account.APITokens {
		if token.Name == name {
			removed = append(removed, token)
		} else {
			kept = append(kept, token)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	account.APITokens = kept
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}

	batch := d.store.Batch()
	batch.Put(accountKey, data)
	for _, token := range removed {
		batch.Delete(TokenKey(token.Token))
	}
	if err := batch.Write(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete token '%s': %v", ErrInternal, name, err)
	}
	return nil
}

// DeleteAllTokens revokes every token on the account.
func (d *Directory) DeleteAllTokens(
	ctx context.Context,
	accountID string,
) error {
	accountKey := AccountKey(accountID)
	account, err := d.loadAccount(ctx, accountKey)
	if err != nil {
		return err
	}
	if len(account.APITokens) == 0 {
		return nil
	}

	removed := account.APITokens
	account.APITokens = nil
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}

	batch := d.store.Batch()
	batch.Put(accountKey, data)
	for _, token := range removed {
		batch.Delete(TokenKey(token.Token))
	}
	if err := batch.Write(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete tokens: %v", ErrInternal, err)
	}
	return nil
}

// ListTokenNames returns the account's token names in list order. A
// missing account yields an empty list, not an error.
func (d *Directory) ListTokenNames(
	ctx context.Context,
	accountID string,
) (
	[]string,
	error,
) {
	account, err := d.loadAccount(ctx, AccountKey(accountID))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, token := range account.APITokens {
		names = append(names, token.Name)
	}
	return names, nil
}
