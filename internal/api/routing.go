package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	s := r.PathPrefix("/api/").Subrouter()

	s.HandleFunc("/account", a.Account()).Methods("GET")

	s.HandleFunc("/tokens", a.ListTokens()).Methods("GET")
	s.HandleFunc("/tokens", a.CreateToken()).Methods("POST")
	s.HandleFunc("/tokens/{name}", a.DeleteToken()).Methods("DELETE")
	s.HandleFunc("/tokens", a.DeleteAllTokens()).Methods("DELETE")

	s.HandleFunc("/onlookers/{onlooker}/{app}", a.Grant()).Methods("PUT")
	s.HandleFunc("/onlookers/{onlooker}/{app}", a.Revoke()).Methods("DELETE")
	s.HandleFunc("/onlookers/{onlooker}", a.RevokeOnlooker()).Methods("DELETE")
	s.HandleFunc("/onlookers", a.RevokeAll()).Methods("DELETE")

	s.HandleFunc("/shares", a.Shares()).Methods("GET")
	s.HandleFunc("/access/{owner}/{app}", a.Access()).Methods("GET")

	if a.federatedKey != "" {
		s.HandleFunc("/federated", a.Federated()).Methods("POST")
	}

	return r
}
