package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ResolveSecret picks the session signing secret. A configured secret wins;
// otherwise one is derived from the database DSN so restarts keep sessions
// valid. Outside production a random secret is generated as a last resort.
func ResolveSecret(configured, databaseDSN string, production bool) (string, error) {
	if configured != "" {
		return configured, nil
	}

	if databaseDSN != "" {
		sum := sha256.Sum256([]byte(databaseDSN))
		return hex.EncodeToString(sum[:]), nil
	}

	if production {
		return "", errors.New("AUTH_SECRET must be set in production")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
