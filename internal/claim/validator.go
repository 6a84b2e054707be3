package claim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"attest/internal/checkpoint"
)

// Validate checks a single claim against the pre-work snapshot and the
// current filesystem rooted at root. A claim that cannot be
// corroborated is a normal outcome (phantom), not an error.
func Validate(c Claim, before checkpoint.Snapshot, root string) Result {
	switch c.Type {
	case FileCreated:
		return validateCreated(c, root)
	case FileModified:
		return validateModified(c, before, root)
	case CommandExecuted:
		return Result{
			Claim:  c,
			Status: Partial,
			Evidence: []string{
				"command execution cannot be verified from filesystem state alone; corroborate via execution log",
			},
		}
	case Custom:
		return Result{
			Claim:  c,
			Status: Unknown,
			Issues: []string{"custom claims are not automatically verifiable"},
		}
	default:
		return Result{
			Claim:  c,
			Status: Unknown,
			Issues: []string{fmt.Sprintf("unrecognized claim type '%s'", c.Type)},
		}
	}
}

// validateCreated verifies a file_created claim: the path must exist
// now; an absent ExpectedContent substring downgrades verified to
// partial.
func validateCreated(c Claim, root string) Result {
	result := Result{Claim: c}

	path := filepath.Join(root, filepath.FromSlash(c.Path))
	if _, err := os.Stat(path); err != nil {
		result.Status = Phantom
		result.Issues = append(result.Issues, fmt.Sprintf("path does not exist: %s", c.Path))
		return result
	}

	result.Status = Verified
	result.Evidence = append(result.Evidence, fmt.Sprintf("path exists: %s", c.Path))

	if c.ExpectedContent != "" {
		data, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(data), c.ExpectedContent) {
			result.Status = Partial
			result.Issues = append(result.Issues, "expected content not found in file")
		}
	}

	return result
}

// validateModified verifies a file_modified claim by comparing the
// current content hash against the pre-work snapshot's hash.
func validateModified(c Claim, before checkpoint.Snapshot, root string) Result {
	result := Result{Claim: c}

	path := filepath.Join(root, filepath.FromSlash(c.Path))
	if _, err := os.Stat(path); err != nil {
		result.Status = Phantom
		result.Issues = append(result.Issues, fmt.Sprintf("path does not exist: %s", c.Path))
		return result
	}

	currentHash, err := checkpoint.HashFile(path)
	if err != nil {
		result.Status = Phantom
		result.Issues = append(result.Issues, fmt.Sprintf("cannot hash file: %v", err))
		return result
	}

	oldHash, existedBefore := before.FileHashes[c.Path]
	if !existedBefore {
		// File was not in the checkpoint: it appeared during the
		// session, which still corroborates a change at this path.
		result.Status = Verified
		result.Evidence = append(result.Evidence,
			fmt.Sprintf("file absent at checkpoint, present now with hash %s", currentHash))
		return result
	}

	if oldHash == currentHash {
		result.Status = Phantom
		result.Issues = append(result.Issues, "file exists but unchanged since checkpoint")
		return result
	}

	result.Status = Verified
	result.Evidence = append(result.Evidence, fmt.Sprintf("hash changed %s -> %s", oldHash, currentHash))
	return result
}
