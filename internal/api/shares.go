package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

type AccessResponse struct {
	Level string `json:"level"`
}

// Shares returns both directions of the requester's sharing graph.
func (a *API) Shares() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		links, err := a.index.AllLinks(r.Context(), account.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		returnJson(links, w)
	})
}

// Access answers the sync router's question: what may the requester do
// with the owner's app namespace. An unknown owner answers "none" rather
// than 404, so probing can't distinguish absent owners from unshared
// ones.
func (a *API) Access() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		vars := mux.Vars(r)
		ownerID := vars["owner"]
		app := vars["app"]
		if !validIdentifier(ownerID) || !validIdentifier(app) {
			logApiErr(r, fmt.Sprintf("invalid access identifiers '%s'/'%s'", ownerID, app))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		level, err := a.guard.Authorize(
			r.Context(),
			account.AccountID,
			directory.AccountKey(ownerID),
			app,
		)
		if err != nil {
			writeError(w, r, err)
			return
		}
		returnJson(AccessResponse{Level: level.String()}, w)
	})
}
