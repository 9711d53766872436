package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
)

// KeyLen is the secret key length in bytes.
const KeyLen = 16

// ReadKeyFile loads a device secret key. The file may hold either 16 raw
// bytes or their 32-character hex encoding (surrounding whitespace
// tolerated). The returned slice is the caller's to zero after use; error
// messages never include file contents.
func ReadKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if len(data) == KeyLen {
		return data, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == hex.EncodedLen(KeyLen) {
		key := make([]byte, KeyLen)
		if _, err := hex.Decode(key, trimmed); err != nil {
			return nil, fmt.Errorf("key file %s is not valid hex: %w", path, err)
		}
		return key, nil
	}

	return nil, fmt.Errorf("key file %s must hold %d raw bytes or %d hex characters",
		path, KeyLen, hex.EncodedLen(KeyLen))
}
