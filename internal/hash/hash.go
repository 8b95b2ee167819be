// Package hash provides content digests for emitted files and node tables.
//
// The executor uses digests to skip copies whose destination already holds
// identical bytes, and the pipeline fingerprints the compiled-node table so
// that rebuilds over an unchanged layout can be recognised in the logs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/danieljhkim/subpkg/internal/project"
)

// Hasher computes content digests.
type Hasher interface {
	// Sum returns the hex digest of data.
	Sum(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Sum returns the SHA-256 digest of data.
func (h *SHA256Hasher) Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Table fingerprints a node table. Keys are visited in sorted order so the
// result does not depend on map iteration.
func Table(h Hasher, table project.Table) (string, error) {
	type entry struct {
		Path string        `json:"path"`
		Node *project.Node `json:"node"`
	}
	entries := make([]entry, 0, len(table))
	for _, key := range table.Keys() {
		entries = append(entries, entry{Path: key, Node: table[key]})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode table: %w", err)
	}
	return h.Sum(data), nil
}
