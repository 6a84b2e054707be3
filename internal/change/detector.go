// Package change computes the set of filesystem changes between two
// checkpoints. Detection is a single pass over the union of both hash
// maps; the output partitions changed paths into exactly one of
// created/modified/deleted.
package change

import (
	"sort"

	"attest/internal/checkpoint"
)

// Type represents the kind of detected change.
type Type string

const (
	Created  Type = "created"  // Path in after but not before
	Modified Type = "modified" // Path in both with different hashes
	Deleted  Type = "deleted"  // Path in before but not after
)

// Change represents a single path's change between two snapshots.
// OldHash/NewHash carry the evidence for the classification.
type Change struct {
	Type    Type   `json:"type"`
	Path    string `json:"path"`
	OldHash string `json:"oldHash,omitempty"`
	NewHash string `json:"newHash,omitempty"`
}

// Detect compares two snapshots and returns all changes, sorted by path
// for deterministic output. Order is otherwise insignificant; use Index
// for path lookups.
func Detect(before, after checkpoint.Snapshot) []Change {
	changes := []Change{}

	// Quick check: identical content versions mean no changes.
	if before.ContentVersion != "" && before.ContentVersion == after.ContentVersion {
		return changes
	}

	// Collect all paths from both snapshots
	allPaths := make(map[string]bool)
	for p := range before.FileHashes {
		allPaths[p] = true
	}
	for p := range after.FileHashes {
		allPaths[p] = true
	}

	// Sort paths for deterministic output
	paths := make([]string, 0, len(allPaths))
	for p := range allPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		oldHash, inBefore := before.FileHashes[path]
		newHash, inAfter := after.FileHashes[path]

		switch {
		case inBefore && !inAfter:
			changes = append(changes, Change{
				Type:    Deleted,
				Path:    path,
				OldHash: oldHash,
			})
		case !inBefore && inAfter:
			changes = append(changes, Change{
				Type:    Created,
				Path:    path,
				NewHash: newHash,
			})
		case oldHash != newHash:
			changes = append(changes, Change{
				Type:    Modified,
				Path:    path,
				OldHash: oldHash,
				NewHash: newHash,
			})
		}
	}

	return changes
}

// Index builds a path-keyed map over a change set for claim matching.
func Index(changes []Change) map[string]Change {
	byPath := make(map[string]Change, len(changes))
	for _, c := range changes {
		byPath[c.Path] = c
	}
	return byPath
}
