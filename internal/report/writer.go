// Package report persists versioned audit artifacts. Reports are
// write-once: each file is keyed by session or checkpoint plus a
// generation timestamp and is never rewritten.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"attest/internal/checks"
	"attest/internal/reconcile"
	"attest/internal/score"
)

// SchemaVersion identifies the report schema for downstream readers.
const SchemaVersion = "1.0"

// Meta is stamped on every persisted report.
type Meta struct {
	SchemaVersion string    `json:"schemaVersion"`
	ReportID      string    `json:"reportId"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Validation is the persisted reconciliation report for one checkpoint.
type Validation struct {
	Meta
	CheckpointID   string           `json:"checkpointId"`
	Reconciliation reconcile.Report `json:"reconciliation"`
}

// Proof is the persisted reliability report for one session.
type Proof struct {
	Meta
	SessionID      string           `json:"sessionId"`
	Reliability    score.Report     `json:"reliability"`
	Reconciliation reconcile.Report `json:"reconciliation"`
}

// Verification is the combined report: reconciliation, reliability, and
// optional external check results.
type Verification struct {
	Meta
	SessionID      string           `json:"sessionId"`
	AgentType      string           `json:"agentType,omitempty"`
	CheckpointID   string           `json:"checkpointId,omitempty"`
	Reconciliation reconcile.Report `json:"reconciliation"`
	Reliability    score.Report     `json:"reliability"`
	Checks         []checks.Result  `json:"checks,omitempty"`
}

// Writer persists reports under Dir.
type Writer struct {
	Dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// DefaultDir returns the default reports directory (~/.attest/reports).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attest/reports"
	}
	return filepath.Join(home, ".attest", "reports")
}

// WriteValidation persists a reconciliation report, returns the path.
func (w *Writer) WriteValidation(checkpointID string, recon reconcile.Report) (string, error) {
	v := Validation{
		Meta:           newMeta(),
		CheckpointID:   checkpointID,
		Reconciliation: recon,
	}
	name := fmt.Sprintf("validation_%s_%d.json", checkpointID, v.GeneratedAt.UnixMilli())
	return w.write(name, v)
}

// WriteProof persists a reliability report, returns the path.
func (w *Writer) WriteProof(sessionID string, recon reconcile.Report, rel score.Report) (string, error) {
	p := Proof{
		Meta:           newMeta(),
		SessionID:      sessionID,
		Reliability:    rel,
		Reconciliation: recon,
	}
	name := fmt.Sprintf("execution-proof-%s.json", sessionID)
	return w.write(name, p)
}

// WriteVerification persists a combined report, returns the path.
func (w *Writer) WriteVerification(v Verification) (string, error) {
	v.Meta = newMeta()
	name := fmt.Sprintf("verification-%s-%d.json", v.SessionID, v.GeneratedAt.UnixMilli())
	return w.write(name, v)
}

func newMeta() Meta {
	return Meta{
		SchemaVersion: SchemaVersion,
		ReportID:      uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
	}
}

func (w *Writer) write(name string, v any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
