package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for display and cache keys
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// DatasetVersion fingerprints the ordered content of a categorized dataset
type DatasetVersion Hash

func NewDatasetVersion(data []byte) DatasetVersion { return DatasetVersion(NewHash(data)) }

func (v DatasetVersion) String() string { return Hash(v).String() }
func (v DatasetVersion) Short() string  { return Hash(v).Short() }
