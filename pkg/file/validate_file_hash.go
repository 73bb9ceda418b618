package file

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// CalculateHash returns the hex sha256 of everything read from r.
func CalculateHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash hesaplanamadı: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidateHash compares the content hash; an empty expectation skips the check.
func ValidateHash(r io.Reader, expectedHash string) error {
	if expectedHash == "" {
		return nil
	}

	calculated, err := CalculateHash(r)
	if err != nil {
		return err
	}
	if !strings.EqualFold(calculated, expectedHash) {
		return fmt.Errorf("hash mismatch: got %s", calculated)
	}
	return nil
}
