package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"attest/internal/claim"
	"attest/internal/execlog"
)

// ErrSessionNotFound is returned when a session doesn't exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCompleted is returned on any mutation of a completed session.
var ErrSessionCompleted = errors.New("session already completed")

// Repository persists session documents. Implementations must make
// Save atomic: a reader never observes a partially written document.
type Repository interface {
	Create(sessionID, agentType, checkpointID string) (Session, error)
	Load(sessionID string) (Session, error)
	List() ([]Summary, error)
	AppendClaim(sessionID string, c claim.Claim) error
	AppendToolCall(sessionID string, r execlog.Record) error
	Complete(sessionID string) (Session, error)
}

// FileRepository stores one JSON document per session under Dir.
// Writes go through a temp file renamed into place, so concurrent
// readers always see a complete document.
type FileRepository struct {
	Dir string
}

// NewFileRepository creates a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{Dir: dir}
}

// DefaultDir returns the default session directory (~/.attest/sessions).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attest/sessions"
	}
	return filepath.Join(home, ".attest", "sessions")
}

// Create starts a new active session and persists it.
func (r *FileRepository) Create(sessionID, agentType, checkpointID string) (Session, error) {
	s := Session{
		SessionID:  sessionID,
		AgentType:  agentType,
		StartTime:  time.Now().UTC(),
		Checkpoint: checkpointID,
		ToolCalls:  []execlog.Record{},
		Claims:     []claim.Claim{},
		Status:     Active,
	}
	if err := r.save(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Load retrieves a session by ID.
func (r *FileRepository) Load(sessionID string) (Session, error) {
	data, err := os.ReadFile(r.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("corrupt session document: %w", err)
	}
	return s, nil
}

// List returns summaries of all sessions, sorted by start time
// descending. Unreadable or invalid files are skipped.
func (r *FileRepository) List() ([]Summary, error) {
	entries, err := os.ReadDir(r.Dir)
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

		data, err := os.ReadFile(filepath.Join(r.Dir, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}

		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			continue // Skip invalid JSON
		}

		summaries = append(summaries, Summary{
			SessionID:  s.SessionID,
			AgentType:  s.AgentType,
			StartTime:  s.StartTime,
			Status:     s.Status,
			ClaimCount: len(s.Claims),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})

	return summaries, nil
}

// AppendClaim adds a claim to an active session.
func (r *FileRepository) AppendClaim(sessionID string, c claim.Claim) error {
	return r.mutate(sessionID, func(s *Session) {
		s.Claims = append(s.Claims, c)
	})
}

// AppendToolCall adds a tool call record to an active session.
func (r *FileRepository) AppendToolCall(sessionID string, rec execlog.Record) error {
	return r.mutate(sessionID, func(s *Session) {
		s.ToolCalls = append(s.ToolCalls, rec)
	})
}

// Complete transitions a session to completed and stamps the end time.
// The transition is terminal; completing twice is an error.
func (r *FileRepository) Complete(sessionID string) (Session, error) {
	s, err := r.Load(sessionID)
	if err != nil {
		return Session{}, err
	}
	if s.Status == Completed {
		return Session{}, ErrSessionCompleted
	}

	now := time.Now().UTC()
	s.Status = Completed
	s.EndTime = &now

	if err := r.save(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// mutate applies fn to an active session and persists the result.
func (r *FileRepository) mutate(sessionID string, fn func(*Session)) error {
	s, err := r.Load(sessionID)
	if err != nil {
		return err
	}
	if s.Status == Completed {
		return ErrSessionCompleted
	}

	fn(&s)
	return r.save(s)
}

// save writes the document atomically: write to a temp file in the
// same directory, then rename into place.
func (r *FileRepository) save(s Session) error {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.Dir, "."+s.SessionID+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, r.path(s.SessionID))
}

// path returns the document path for a session ID.
func (r *FileRepository) path(sessionID string) string {
	safe := strings.ReplaceAll(sessionID, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	return filepath.Join(r.Dir, safe+".json")
}
