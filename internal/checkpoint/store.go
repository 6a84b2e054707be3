package checkpoint

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrCheckpointNotFound is returned when a checkpoint doesn't exist.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Store manages checkpoint persistence.
type Store struct {
	Dir string // Base directory for checkpoints
}

// NewStore creates a store with the given directory.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns the default checkpoint directory (~/.attest/checkpoints).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attest/checkpoints"
	}
	return filepath.Join(home, ".attest", "checkpoints")
}

// ResolveDir returns the checkpoint directory from env var or default.
func ResolveDir(environ []string) string {
	for _, env := range environ {
		if strings.HasPrefix(env, "ATTEST_CHECKPOINT_DIR=") {
			return strings.TrimPrefix(env, "ATTEST_CHECKPOINT_DIR=")
		}
	}
	return DefaultDir()
}

// Save stores a snapshot, returns the file path.
func (s *Store) Save(snap Snapshot) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}

	path := s.Path(snap.ID)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}

// Load retrieves a snapshot by checkpoint ID.
func (s *Store) Load(id string) (Snapshot, error) {
	path := s.Path(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, ErrCheckpointNotFound
		}
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// List returns all stored checkpoints as summaries.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue // Skip unreadable files
		}

		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue // Skip invalid JSON
		}

		summaries = append(summaries, Summary{
			ID:        snap.ID,
			AgentType: snap.AgentType,
			Timestamp: snap.Timestamp,
			FileCount: len(snap.FileHashes),
		})
	}

	return summaries, nil
}

// Delete removes a checkpoint by ID.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return err
	}
	return nil
}

// Exists checks if a checkpoint exists.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Path returns the file path for a checkpoint ID.
// Sanitizes separators for filesystem compatibility.
func (s *Store) Path(id string) string {
	safe := strings.ReplaceAll(id, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	return filepath.Join(s.Dir, safe+".json")
}
