// Package fileutils provides file reading and content-hashing helpers.
package fileutils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// HashBytes returns the SHA-256 digest of content as lowercase hex. The
// digest depends only on the bytes, never the filename, so re-uploads of
// identical content always produce the same dedup key.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ReadFile reads a file fully into memory.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error reading file '%s': %w", path, err)
	}
	return data, nil
}
