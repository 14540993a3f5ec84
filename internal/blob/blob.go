// Package blob stores payment proof files and returns stable references to them.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape their folder.
var ErrInvalidKey = errors.New("invalid blob key")

// Store uploads a file under key and returns a reference that can be stored
// alongside the membership and resolved later.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (ref string, err error)
}

// ProofKey builds the key for a payment proof of one membership in one cycle.
func ProofKey(circleID, membershipID string, turn int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("proofs", circleID, membershipID, "turn-"+strconv.Itoa(turn)+ext)
}

// cleanKey normalises key to a slash-separated relative path.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
