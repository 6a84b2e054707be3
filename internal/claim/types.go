// Package claim models agent-asserted deliverables and validates them
// against a checkpoint and the live filesystem.
package claim

// Type represents the kind of deliverable a claim asserts.
type Type string

const (
	FileCreated     Type = "file_created"
	FileModified    Type = "file_modified"
	CommandExecuted Type = "command_executed"
	Custom          Type = "custom"
)

// Claim is an agent's self-reported assertion about work performed.
type Claim struct {
	Type            Type   `json:"type"`
	Path            string `json:"path,omitempty"`            // For file claims
	Command         string `json:"command,omitempty"`         // For command claims
	Description     string `json:"description,omitempty"`     // Free-form claim text
	Tool            string `json:"tool,omitempty"`            // Tool the agent says it used
	ExpectedContent string `json:"expectedContent,omitempty"` // Substring expected in created file
}

// Status classifies a validation outcome.
type Status string

const (
	Verified Status = "verified" // Corroborated by filesystem state
	Phantom  Status = "phantom"  // No corresponding effect found
	Partial  Status = "partial"  // Effect exists but incomplete or unverifiable
	Unknown  Status = "unknown"  // Claim type not recognized
)

// Result contains the validation outcome for a single claim.
type Result struct {
	Claim    Claim    `json:"claim"`
	Status   Status   `json:"status"`
	Evidence []string `json:"evidence,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}
