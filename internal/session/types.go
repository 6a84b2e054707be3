// Package session tracks one agent work session: its tool calls, its
// claims, and its lifecycle. A session transitions active -> completed
// exactly once and accepts no further appends after completion.
package session

import (
	"time"

	"attest/internal/claim"
	"attest/internal/execlog"
)

// Status represents the session lifecycle state.
type Status string

const (
	Active    Status = "active"
	Completed Status = "completed" // Terminal
)

// Session is the per-session document persisted by the repository.
type Session struct {
	SessionID  string           `json:"sessionId"`
	AgentType  string           `json:"agentType"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	Checkpoint string           `json:"checkpoint,omitempty"` // Pre-work checkpoint ID
	ToolCalls  []execlog.Record `json:"toolCalls"`
	Claims     []claim.Claim    `json:"claims"`
	Status     Status           `json:"status"`
}

// Summary is a lightweight view for listing sessions.
type Summary struct {
	SessionID  string    `json:"sessionId"`
	AgentType  string    `json:"agentType"`
	StartTime  time.Time `json:"startTime"`
	Status     Status    `json:"status"`
	ClaimCount int       `json:"claimCount"`
}
