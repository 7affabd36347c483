package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

// Grant links the named onlooker to the requester's app namespace. The
// requester is always the creator side; nobody grants on another
// account's behalf.
func (a *API) Grant() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		onlookerID, app, ok := linkVars(w, r)
		if !ok {
			return
		}

		err := a.index.Grant(r.Context(), account.AccountID, onlookerID, app)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// Revoke removes a single link. Idempotent.
func (a *API) Revoke() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		onlookerID, app, ok := linkVars(w, r)
		if !ok {
			return
		}

		err := a.index.Revoke(r.Context(), account.AccountID, onlookerID, app)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// RevokeOnlooker removes every link from the requester to one onlooker.
func (a *API) RevokeOnlooker() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		onlookerID := mux.Vars(r)["onlooker"]
		if !validIdentifier(onlookerID) {
			logApiErr(r, fmt.Sprintf("invalid onlooker id '%s'", onlookerID))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err := a.index.RevokeOnlooker(r.Context(), account.AccountID, onlookerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// RevokeAll removes every link the requester has granted.
func (a *API) RevokeAll() http.HandlerFunc {
	return a.requireAccount(func(w http.ResponseWriter, r *http.Request, account *directory.Account) {
		err := a.index.RevokeAll(r.Context(), account.AccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func linkVars(
	w http.ResponseWriter,
	r *http.Request,
) (
	onlookerID string,
	app string,
	ok bool,
) {
	vars := mux.Vars(r)
	onlookerID = vars["onlooker"]
	app = vars["app"]
	if !validIdentifier(onlookerID) || !validIdentifier(app) {
		logApiErr(r, fmt.Sprintf("invalid link identifiers '%s'/'%s'", onlookerID, app))
		w.WriteHeader(http.StatusBadRequest)
		return "", "", false
	}
	return onlookerID, app, true
}
