package api

import (
	"net/http"
	"strings"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

// authedHandler is an endpoint that runs on behalf of a resolved
// account.
type authedHandler func(w http.ResponseWriter, r *http.Request, account *directory.Account)

// requireAccount resolves the bearer token to an account before invoking
// the handler. Missing and unresolvable tokens are both 401; the
// response never says which.
func (a *API) requireAccount(handler authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			logApiErr(r, "missing bearer token")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		account, err := a.directory.ResolveAccount(r.Context(), directory.TokenKey(token))
		if err != nil {
			logApiErr(r, "bearer token did not resolve")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		handler(w, r, account)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
