package api

import (
	"net/http"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

// Account returns the requester's own record, tokens stripped.
func (a *API) Account() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		returnJson(account.Public(), w)
	})
}
