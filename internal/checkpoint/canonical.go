package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ContentVersion computes the SHA-256 hash of a file-hash map in
// canonical form. Returns the hash prefixed with "sha256:". Two
// snapshots with equal ContentVersion have identical tracked content.
func ContentVersion(fileHashes map[string]string) string {
	canonical := canonicalHashesJSON(fileHashes)
	hash := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// canonicalHashesJSON produces canonical JSON for the hash map.
// Keys are sorted alphabetically, no whitespace.
func canonicalHashesJSON(values map[string]string) []byte {
	if len(values) == 0 {
		return []byte("{}")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valueJSON, _ := json.Marshal(values[k])
		result = append(result, keyJSON...)
		result = append(result, ':')
		result = append(result, valueJSON...)
	}
	result = append(result, '}')
	return result
}
