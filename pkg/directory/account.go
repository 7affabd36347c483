package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Account is the canonical user record as stored. It never leaves this
// package except through trusted callers; boundary code gets a
// PublicAccount instead.
type Account struct {
	AccountID  string     `json:"accountId"`
	Identities Identities `json:"identities"`
	APITokens  []Token    `json:"apiTokens,omitempty"`
}

// Identities holds the external identities attached to an account.
type Identities struct {
	Federated *Profile `json:"federated,omitempty"`
}

// Token is one API token entry. Names are intended-unique within an
// account but not enforced; deletes remove every entry sharing a name.
type Token struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// PublicAccount is the account record with the token list stripped. The
// type carries no token field, which is the boundary enforcement.
type PublicAccount struct {
	AccountID  string     `json:"accountId"`
	Identities Identities `json:"identities"`
}

// Public returns the safe view of the account.
func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		AccountID:  a.AccountID,
		Identities: a.Identities,
	}
}

// decodeAccount strictly deserializes a stored account record. Unknown
// fields, an empty account ID, or an ID that disagrees with the key it
// was loaded from are all corruption.
func decodeAccount(
	accountKey string,
	data []byte,
) (
	*Account,
	error,
) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	account := &Account{}
	if err := decoder.Decode(account); err != nil {
		return nil, fmt.Errorf("undecodable record: %v", err)
	}
	if account.AccountID == "" {
		return nil, fmt.Errorf("record has empty accountId")
	}
	if AccountKey(account.AccountID) != accountKey {
		return nil, fmt.Errorf(
			"record accountId '%s' does not match key '%s'", account.AccountID, accountKey)
	}
	return account, nil
}

func encodeAccount(account *Account) ([]byte, error) {
	data, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode account '%s': %v",
			ErrInternal, account.AccountID, err)
	}
	return data, nil
}
