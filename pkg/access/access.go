// Package access is the decision facade the request router calls:
// directory resolution composed with an index query, answering what a
// requester may do with an owner's app namespace.
package access

import (
	"context"
	"errors"
	"slices"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
	"git.sr.ht/~jakintosh/onlook/pkg/onlooker"
)

// Level is the access a requester holds on a namespace.
type Level int

const (
	LevelNone Level = iota
	LevelReadOnly
	LevelFull
)

func (l Level) String() string {
	switch l {
	case LevelFull:
		return "full"
	case LevelReadOnly:
		return "read-only"
	default:
		return "none"
	}
}

// Permits reports whether the level allows an operation category. Which
// categories count as read-only is the router's policy, passed in here,
// never computed here.
func (l Level) Permits(category string, readOnly []string) bool {
	switch l {
	case LevelFull:
		return true
	case LevelReadOnly:
		return slices.Contains(readOnly, category)
	default:
		return false
	}
}

// Guard combines the directory and the index into one decision call.
type Guard struct {
	directory *directory.Directory
	index     *onlooker.Index
}

func New(d *directory.Directory, x *onlooker.Index) *Guard {
	return &Guard{directory: d, index: x}
}

// Authorize resolves ownerKey (any directory key kind) and decides the
// requester's level on the owner's app namespace: full for the owner,
// read-only for a linked onlooker, none otherwise. An unknown owner is
// LevelNone, not an error.
func (g *Guard) Authorize(
	ctx context.Context,
	requesterID string,
	ownerKey string,
	app string,
) (
	Level,
	error,
) {
	owner, err := g.directory.ResolveAccountSafe(ctx, ownerKey)
	if errors.Is(err, directory.ErrAccountNotFound) {
		return LevelNone, nil
	}
	if err != nil {
		return LevelNone, err
	}

	if owner.AccountID == requesterID {
		return LevelFull, nil
	}

	authorized, err := g.index.Authorized(ctx, owner.AccountID, requesterID, app)
	if err != nil {
		return LevelNone, err
	}
	if authorized {
		return LevelReadOnly, nil
	}
	return LevelNone, nil
}
