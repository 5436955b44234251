package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ComputeKey fingerprints a request. encoding/json writes map keys in sorted
// order, so logically identical parameter maps always produce the same key.
func ComputeKey(namespace string, params map[string]any) string {
	paramBytes, err := json.Marshal(params)
	if err != nil {
		// Unencodable values still need a stable key
		paramBytes = []byte(fmt.Sprintf("%v", params))
	}
	hash := sha256.Sum256(append([]byte(namespace+"::"), paramBytes...))
	return hex.EncodeToString(hash[:])
}
