// Package api implements the HTTP surface of the onlook server: API
// token management, onlooker grant/revoke, share listing, and the access
// decision endpoint the sync router queries. It owns caller-facing
// identifier validation and the mapping from package sentinels to
// status codes.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"git.sr.ht/~jakintosh/onlook/pkg/access"
	"git.sr.ht/~jakintosh/onlook/pkg/directory"
	"git.sr.ht/~jakintosh/onlook/pkg/onlooker"
)

// PolicyProvider serves the current federated-identity allowlist.
type PolicyProvider interface {
	Policy() directory.Allowlist
}

// API holds the handler dependencies.
type API struct {
	directory *directory.Directory
	index     *onlooker.Index
	guard     *access.Guard
	allowlist PolicyProvider

	// shared secret for /api/federated; empty disables the route
	federatedKey string
}

func New(
	d *directory.Directory,
	x *onlooker.Index,
	g *access.Guard,
	allowlist PolicyProvider,
	federatedKey string,
) *API {
	return &API{
		directory:    d,
		index:        x,
		guard:        g,
		allowlist:    allowlist,
		federatedKey: federatedKey,
	}
}

func decodeRequest[T any](req *T, w http.ResponseWriter, r *http.Request) bool {
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logApiErr(r, "bad json request")
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func returnJson(data any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func logApiErr(r *http.Request, msg string) {
	log.Printf("%s %s: %s\n", r.Method, r.RequestURI, msg)
}

// writeError maps package sentinels onto status codes: absence to 404,
// everything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logApiErr(r, err.Error())
	if errors.Is(err, directory.ErrAccountNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

// validIdentifier restricts account IDs and app names arriving over HTTP
// to the safe alphabet the link key encoding depends on ('/' free).
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
