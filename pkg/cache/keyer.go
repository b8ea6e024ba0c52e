package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer builds cache keys for remote service responses.
type Keyer interface {
	// ServiceKey returns the key for a request body sent to endpoint.
	ServiceKey(endpoint string, body []byte) string
}

// DefaultKeyer keys a response by endpoint and the SHA-256 of the request
// body, so any change to the diagram, dialect or options is a new entry.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ServiceKey returns "service:<endpoint>:<sha256 of body>".
func (DefaultKeyer) ServiceKey(endpoint string, body []byte) string {
	return "service:" + endpoint + ":" + Hash(body)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
