package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"attest/internal/vcs"
)

// Capture walks rootDir and builds a snapshot of every regular file not
// matched by an exclude pattern. Unreadable files and directories are
// skipped silently; a permission error must never abort the whole
// capture. VCS state is captured best-effort.
func Capture(rootDir string, agentType string, exclude []string) (Snapshot, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolve root: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot root: %w", err)
	}

	hashes := make(map[string]string)

	filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it (and its subtree if a directory).
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Directories are recorded only implicitly via file paths.
		// Symlinks and other irregular files are not hashed.
		if !d.Type().IsRegular() {
			return nil
		}

		hash, hashErr := HashFile(path)
		if hashErr != nil {
			return nil
		}
		hashes[rel] = hash
		return nil
	})

	now := time.Now().UTC()
	return Snapshot{
		ID:             agentType + "_" + fmt.Sprintf("%d", now.UnixMilli()),
		AgentType:      agentType,
		Timestamp:      now,
		VCS:            vcs.CaptureState(absRoot),
		FileHashes:     hashes,
		ContentVersion: ContentVersion(hashes),
	}, nil
}

// HashFile computes the SHA-256 digest of a file's content and returns
// it in sha256:hex format.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// excluded reports whether a relative slash path matches any exclude
// pattern. A pattern matches if it equals a path segment (directory
// names like "node_modules"), matches the whole path as a glob, or
// matches the base name as a glob ("*.log").
func excluded(rel string, patterns []string) bool {
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]

	for _, pat := range patterns {
		for _, seg := range segments {
			if seg == pat {
				return true
			}
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
