package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

type CreateTokenRequest struct {
	Name string `json:"name"`
}

type CreateTokenResponse struct {
	Token string `json:"token"`
}

type ListTokensResponse struct {
	Names []string `json:"names"`
}

// ListTokens returns the requester's token names.
func (a *API) ListTokens() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		names, err := a.directory.ListTokenNames(r.Context(), account.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		returnJson(ListTokensResponse{Names: names}, w)
	})
}

// CreateToken issues a new API token. The secret appears in this
// response and nowhere else.
func (a *API) CreateToken() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		req := CreateTokenRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}
		if !validIdentifier(req.Name) {
			logApiErr(r, fmt.Sprintf("invalid token name '%s'", req.Name))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, err := a.directory.CreateToken(r.Context(), account.AccountID, req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		returnJson(CreateTokenResponse{Token: token}, w)
	})
}

// DeleteToken revokes every token sharing the named label.
func (a *API) DeleteToken() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		name := mux.Vars(r)["name"]
		if !validIdentifier(name) {
			logApiErr(r, fmt.Sprintf("invalid token name '%s'", name))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err := a.directory.DeleteToken(r.Context(), account.AccountID, name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// DeleteAllTokens revokes every token on the requester's account,
// including the one authenticating this request.
func (a *API) DeleteAllTokens() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		err := a.directory.DeleteAllTokens(r.Context(), account.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
