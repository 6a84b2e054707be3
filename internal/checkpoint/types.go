// Package checkpoint captures and persists point-in-time snapshots of a
// directory tree: a content-hash map of regular files plus best-effort
// version-control state. Snapshots are the atomic unit of comparison for
// change detection.
package checkpoint

import (
	"time"

	"attest/internal/vcs"
)

// Snapshot represents a point-in-time view of a directory tree.
// FileHashes keys are slash-separated paths relative to the capture
// root. A snapshot is immutable once created; two snapshots are only
// comparable if captured against the same root.
type Snapshot struct {
	ID             string            `json:"id"`             // <agentType>_<unix-millis>
	AgentType      string            `json:"agentType"`      // Agent that owns the session
	Timestamp      time.Time         `json:"timestamp"`      // When the snapshot was taken
	VCS            *vcs.State        `json:"vcsState"`       // nil when not under version control
	FileHashes     map[string]string `json:"fileHashes"`     // relative path -> sha256:hex
	ContentVersion string            `json:"contentVersion"` // Canonical hash of FileHashes
}

// Summary is a lightweight view for listing checkpoints.
type Summary struct {
	ID        string    `json:"id"`
	AgentType string    `json:"agentType"`
	Timestamp time.Time `json:"timestamp"`
	FileCount int       `json:"fileCount"`
}
