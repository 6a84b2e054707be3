// Package execlog records tool invocations made during an agent
// session. The log is append-only JSONL: records are never mutated
// after write, and appends are atomic at the OS level for a single
// line write.
package execlog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Size bounds for stored parameter values and results. Oversized
// content is truncated, never rejected.
const (
	MaxParamLen  = 1024
	MaxResultLen = 4096
)

// Record represents a single tool invocation.
type Record struct {
	SessionID   string            `json:"sessionId"`
	ExecutionID string            `json:"executionId"` // Unique per process lifetime
	Timestamp   time.Time         `json:"timestamp"`
	ToolName    string            `json:"toolName"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Result      string            `json:"result,omitempty"`
	Success     bool              `json:"success"`
}

// NewExecutionID returns a globally unique execution identifier.
func NewExecutionID() string {
	return uuid.NewString()
}

// secretParams are parameter keys whose values are redacted before the
// record is written.
var secretParams = []string{"token", "secret", "password", "api_key", "apikey", "credential"}

// Sanitize returns a copy of the record with size bounds applied and
// secret-looking parameter values redacted.
func Sanitize(r Record) Record {
	out := r
	out.Result = truncate(r.Result, MaxResultLen)

	if len(r.Parameters) > 0 {
		params := make(map[string]string, len(r.Parameters))
		for k, v := range r.Parameters {
			if isSecretParam(k) {
				params[k] = "[REDACTED]"
				continue
			}
			params[k] = truncate(v, MaxParamLen)
		}
		out.Parameters = params
	}

	return out
}

func isSecretParam(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range secretParams {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up so the cut never splits a multi-byte rune.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...[truncated]"
}
