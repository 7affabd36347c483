package onlooker

import (
	"fmt"
	"strings"
)

// Link keys are six '/'-separated segments alternating fixed labels and
// identifiers:
//
//	forward: creator/<creatorID>/onlooker/<onlookerID>/app/<app>
//	reverse: onlooker/<onlookerID>/creator/<creatorID>/app/<app>
//
// Identifiers never contain '/' (IDs come from base32/base64url
// alphabets; app names are validated at the API boundary), so parsing
// is a fixed-position split.

func forwardKey(creatorID, onlookerID, app string) string {
	return strings.Join([]string{
		creatorSegment, creatorID,
		onlookerSegment, onlookerID,
		appSegment, app,
	}, "/")
}

func reverseKey(creatorID, onlookerID, app string) string {
	return strings.Join([]string{
		onlookerSegment, onlookerID,
		creatorSegment, creatorID,
		appSegment, app,
	}, "/")
}

func parseForwardKey(key string) (creatorID, onlookerID, app string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 6 ||
		parts[0] != creatorSegment ||
		parts[2] != onlookerSegment ||
		parts[4] != appSegment {
		return "", "", "", fmt.Errorf("not a forward link key")
	}
	return parts[1], parts[3], parts[5], nil
}

func parseReverseKey(key string) (creatorID, onlookerID, app string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 6 ||
		parts[0] != onlookerSegment ||
		parts[2] != creatorSegment ||
		parts[4] != appSegment {
		return "", "", "", fmt.Errorf("not a reverse link key")
	}
	return parts[3], parts[1], parts[5], nil
}
