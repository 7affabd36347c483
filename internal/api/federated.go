package api

import (
	"crypto/subtle"
	"net/http"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

// Federated resolves (or first creates) the account for a verified
// federated identity profile. The OAuth handshake itself happens in the
// external login collaborator; it posts the verified profile here,
// authenticated by the shared key, and the current allowlist policy
// decides admission. Denied and unknown are the same 404.
func (a *API) Federated() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Federated-Key")
		if a.federatedKey == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(a.federatedKey)) != 1 {
			logApiErr(r, "bad federated key")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		profile := directory.Profile{}
		if ok := decodeRequest(&profile, w, r); !ok {
			return
		}

		account, err := a.directory.FindOrCreateFederated(
			r.Context(),
			profile,
			a.allowlist.Policy(),
		)
		if err != nil {
			writeError(w, r, err)
			return
		}
		returnJson(account, w)
	}
}
