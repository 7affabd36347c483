// Package onlooker maintains the bidirectional sharing graph: directed
// (creator, onlooker, app) links meaning the onlooker may read the
// creator's app namespace. Every link is stored twice, once keyed from
// each side, so both "who did I grant" and "who granted me" are single
// range scans; the pair is written and removed together in one atomic
// batch. This package is the only code path that writes either key.
package onlooker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"git.sr.ht/~jakintosh/onlook/pkg/store"
)

const (
	creatorSegment  = "creator"
	onlookerSegment = "onlooker"
	appSegment      = "app"

	// presence marks the link; the value content carries no meaning
	sentinel = "1"
)

// Index answers and mutates read-access links over the injected store.
type Index struct {
	store store.Store
}

func New(s store.Store) *Index {
	return &Index{store: s}
}

// Entry is one end of a link as seen from one account: the other party
// and the shared app namespace.
type Entry struct {
	AccountID string `json:"accountId"`
	App       string `json:"app"`
}

// Links is the complete sharing picture for one account: namespaces it
// granted out, and namespaces granted to it. Both lists follow the
// store's key order: grouped by the other party, then by app.
type Links struct {
	Granted  []Entry `json:"granted"`
	Received []Entry `json:"received"`
}

// Authorized reports whether onlookerID may read creatorID's app
// namespace. One point lookup on the forward key; the forward index is
// authoritative for this direction.
func (x *Index) Authorized(
	ctx context.Context,
	creatorID string,
	onlookerID string,
	app string,
) (
	bool,
	error,
) {
	_, err := x.store.Get(ctx, forwardKey(creatorID, onlookerID, app))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check link: %v", err)
	}
	return true, nil
}

// Grant links onlookerID to creatorID's app namespace. Idempotent.
func (x *Index) Grant(
	ctx context.Context,
	creatorID string,
	onlookerID string,
	app string,
) error {
	batch := x.store.Batch()
	batch.Put(forwardKey(creatorID, onlookerID, app), []byte(sentinel))
	batch.Put(reverseKey(creatorID, onlookerID, app), []byte(sentinel))
	if err := batch.Write(ctx); err != nil {
		return fmt.Errorf("failed to grant link: %v", err)
	}
	return nil
}

// Revoke removes a single link. Revoking an absent link succeeds.
func (x *Index) Revoke(
	ctx context.Context,
	creatorID string,
	onlookerID string,
	app string,
) error {
	batch := x.store.Batch()
	batch.Delete(forwardKey(creatorID, onlookerID, app))
	batch.Delete(reverseKey(creatorID, onlookerID, app))
	if err := batch.Write(ctx); err != nil {
		return fmt.Errorf("failed to revoke link: %v", err)
	}
	return nil
}

// RevokeOnlooker removes every app link between creatorID and
// onlookerID.
//
// The scan and the batch are two steps: a grant racing into the scanned
// range may land before or after the scan passes its key, so it either
// dies with the batch or survives the revoke. Tolerated: this mutation
// is rare and a missed link is re-revokable.
func (x *Index) RevokeOnlooker(
	ctx context.Context,
	creatorID string,
	onlookerID string,
) error {
	prefix := strings.Join(
		[]string{creatorSegment, creatorID, onlookerSegment, onlookerID}, "/") + "/"
	return x.revokeForwardRange(ctx, prefix)
}

// RevokeAll removes every link creatorID has granted, to any onlooker.
// Same racing caveat as RevokeOnlooker.
func (x *Index) RevokeAll(
	ctx context.Context,
	creatorID string,
) error {
	prefix := strings.Join([]string{creatorSegment, creatorID}, "/") + "/"
	return x.revokeForwardRange(ctx, prefix)
}

func (x *Index) revokeForwardRange(
	ctx context.Context,
	prefix string,
) error {
	start, end := store.PrefixRange(prefix)
	keys, err := x.store.ScanKeys(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to scan links: %v", err)
	}
	if len(keys) == 0 {
		return nil
	}

	batch := x.store.Batch()
	for _, key := range keys {
		creatorID, onlookerID, app, err := parseForwardKey(key)
		if err != nil {
			// never delete what we can't mirror
			log.Printf("onlooker: skipping unparseable link key '%s': %v\n", key, err)
			continue
		}
		batch.Delete(key)
		batch.Delete(reverseKey(creatorID, onlookerID, app))
	}
	if err := batch.Write(ctx); err != nil {
		return fmt.Errorf("failed to revoke links: %v", err)
	}
	return nil
}

// AllLinks enumerates both directions of the graph around accountID:
// links it granted (forward scan as creator) and links it received
// (reverse scan as onlooker).
func (x *Index) AllLinks(
	ctx context.Context,
	accountID string,
) (
	*Links,
	error,
) {
	links := &Links{}

	forwardPrefix := strings.Join([]string{creatorSegment, accountID}, "/") + "/"
	start, end := store.PrefixRange(forwardPrefix)
	keys, err := x.store.ScanKeys(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to scan granted links: %v", err)
	}
	for _, key := range keys {
		_, onlookerID, app, err := parseForwardKey(key)
		if err != nil {
			log.Printf("onlooker: skipping unparseable link key '%s': %v\n", key, err)
			continue
		}
		links.Granted = append(links.Granted, Entry{AccountID: onlookerID, App: app})
	}

	reversePrefix := strings.Join([]string{onlookerSegment, accountID}, "/") + "/"
	start, end = store.PrefixRange(reversePrefix)
	keys, err = x.store.ScanKeys(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to scan received links: %v", err)
	}
	for _, key := range keys {
		creatorID, _, app, err := parseReverseKey(key)
		if err != nil {
			log.Printf("onlooker: skipping unparseable link key '%s': %v\n", key, err)
			continue
		}
		links.Received = append(links.Received, Entry{AccountID: creatorID, App: app})
	}

	return links, nil
}
