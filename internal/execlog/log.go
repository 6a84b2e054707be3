package execlog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log appends execution records to a JSONL file, one JSON object per
// line. Safe for concurrent appenders within a process; the single-line
// write is atomic at the OS level across processes.
type Log struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// Open creates or opens the JSONL log at path, creating parent
// directories if needed.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Log{path: path, f: f}, nil
}

// DefaultPath returns the log path inside a data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "execution-log.jsonl")
}

// Append sanitizes and writes one record as a single JSONL line.
// An empty ExecutionID or Timestamp is filled in.
func (l *Log) Append(r Record) error {
	if r.ExecutionID == "" {
		r.ExecutionID = NewExecutionID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	r = Sanitize(r)

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.f.Write(data)
	return err
}

// ReadSession scans the whole file and returns records for the given
// session in append order. Malformed lines are skipped.
func (l *Log) ReadSession(sessionID string) ([]Record, error) {
	l.mu.Lock()
	_ = l.f.Sync()
	l.mu.Unlock()

	return ReadSessionFile(l.path, sessionID)
}

// ReadSessionFile reads a JSONL execution log without an open handle.
// A missing file yields an empty slice; malformed lines are skipped.
func ReadSessionFile(path, sessionID string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}

	var out []Record
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue // Skip malformed lines
		}
		if sessionID == "" || r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
