package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"attest/internal/change"
	"attest/internal/checkpoint"
	"attest/internal/checks"
	"attest/internal/cli"
	"attest/internal/claim"
	"attest/internal/config"
	"attest/internal/execlog"
	"attest/internal/reconcile"
	"attest/internal/report"
	"attest/internal/score"
	"attest/internal/session"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailed   = 1 // Below threshold or validation failure
	exitUsage    = 2 // Malformed arguments or config
	exitNotFound = 3 // Referenced checkpoint/session does not exist
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), "."))
}

// env holds everything a subcommand needs: resolved directories,
// configuration, and the working directory under audit. Constructed
// once per invocation and passed explicitly; there is no global state.
type env struct {
	workdir     string
	config      config.Config
	checkpoints *checkpoint.Store
	sessions    *session.FileRepository
	reports     *report.Writer
	logPath     string
	jsonOut     bool
}

// run orchestrates one CLI invocation and returns an exit code.
// Separated from main() to enable testing.
func run(args []string, environ []string, defaultWorkdir string) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitUsage
	}

	workdir := cmd.Workdir
	if workdir == "" {
		workdir = defaultWorkdir
	}

	cfg, err := config.Load(config.ResolvePath(cmd.ConfigPath, environ, workdir))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitUsage
	}

	dataDir := resolveDataDir(cmd.DataDir, environ)
	e := env{
		workdir:     workdir,
		config:      cfg,
		checkpoints: checkpoint.NewStore(filepath.Join(dataDir, "checkpoints")),
		sessions:    session.NewFileRepository(filepath.Join(dataDir, "sessions")),
		reports:     report.NewWriter(filepath.Join(dataDir, "reports")),
		logPath:     execlog.DefaultPath(dataDir),
		jsonOut:     cmd.JSONOutput,
	}

	switch cmd.Subcommand {
	case cli.SubcommandCheckpoint:
		return runCheckpoint(e, cmd)
	case cli.SubcommandValidate:
		return runValidate(e, cmd)
	case cli.SubcommandVerify:
		return runVerify(e, cmd)
	case cli.SubcommandList:
		return runList(e)
	}

	fmt.Fprintln(os.Stderr, "Error:", cli.ErrNoSubcommand)
	return exitUsage
}

// runCheckpoint captures a snapshot of the working directory and prints
// the new checkpoint ID. With a session ID, it also opens a session
// document referencing the checkpoint.
func runCheckpoint(e env, cmd cli.Command) int {
	snap, err := checkpoint.Capture(e.workdir, cmd.AgentType, e.config.Exclude)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailed
	}

	if _, err := e.checkpoints.Save(snap); err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot save checkpoint:", err)
		return exitFailed
	}

	if cmd.SessionID != "" {
		if _, err := e.sessions.Load(cmd.SessionID); errors.Is(err, session.ErrSessionNotFound) {
			if _, err := e.sessions.Create(cmd.SessionID, cmd.AgentType, snap.ID); err != nil {
				fmt.Fprintln(os.Stderr, "Error: cannot create session:", err)
				return exitFailed
			}
		}
	}

	fmt.Println(snap.ID)
	return exitOK
}

// runValidate reconciles a claims document against the named checkpoint
// and the current filesystem. Exit 0 when the per-claim match rate
// meets the configured threshold.
func runValidate(e env, cmd cli.Command) int {
	before, err := e.checkpoints.Load(cmd.CheckpointID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrCheckpointNotFound) {
			fmt.Fprintf(os.Stderr, "checkpoint not found: %s\n", cmd.CheckpointID)
			return exitNotFound
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailed
	}

	claims, err := parseClaims(cmd.ClaimsJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot parse claims:", err)
		return exitUsage
	}

	after, err := checkpoint.Capture(e.workdir, before.AgentType, e.config.Exclude)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailed
	}

	records, err := execlog.ReadSessionFile(e.logPath, "")
	if err != nil {
		// Environment error: proceed without execution corroboration.
		records = nil
	}

	changes := change.Detect(before, after)
	recon := reconcile.Reconcile(claims, before, e.workdir, changes, records)

	if _, err := e.reports.WriteValidation(cmd.CheckpointID, recon); err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot write report:", err)
		return exitFailed
	}

	if e.jsonOut {
		printJSON(recon)
	} else {
		printReconciliation(recon)
	}

	if recon.ClaimedVsActual >= e.config.MatchThreshold {
		return exitOK
	}
	return exitFailed
}

// runVerify produces the combined verification report for a session:
// checkpoint diff, claim reconciliation, reliability score, and
// optional external checks. Exit 0 when the composite score meets the
// configured threshold. Completes the session.
func runVerify(e env, cmd cli.Command) int {
	sess, err := e.sessions.Load(cmd.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			fmt.Fprintf(os.Stderr, "session not found: %s\n", cmd.SessionID)
			return exitNotFound
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailed
	}

	agentType := cmd.AgentType
	if agentType == "" {
		agentType = sess.AgentType
	}

	var before checkpoint.Snapshot
	var changes []change.Change
	if !cmd.SkipCheckpoint && sess.Checkpoint != "" {
		loaded, err := e.checkpoints.Load(sess.Checkpoint)
		if err != nil {
			if errors.Is(err, checkpoint.ErrCheckpointNotFound) {
				fmt.Fprintf(os.Stderr, "checkpoint not found: %s\n", sess.Checkpoint)
				return exitNotFound
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			return exitFailed
		}
		before = loaded

		after, err := checkpoint.Capture(e.workdir, agentType, e.config.Exclude)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return exitFailed
		}
		changes = change.Detect(before, after)
	}

	records, err := execlog.ReadSessionFile(e.logPath, sess.SessionID)
	if err != nil || len(records) == 0 {
		// Fall back to tool calls recorded on the session document.
		records = sess.ToolCalls
	}

	recon := reconcile.Reconcile(sess.Claims, before, e.workdir, changes, records)
	rel := score.Compute(recon, sess.Claims, records, e.config.SignificantCommands)

	skip := map[string]bool{}
	if cmd.SkipTests {
		skip["test"] = true
	}
	if cmd.SkipBuild {
		skip["build"] = true
	}
	checkResults := checks.RunAll(context.Background(), e.config.Checks, e.workdir, skip)

	verification := report.Verification{
		SessionID:      sess.SessionID,
		AgentType:      agentType,
		CheckpointID:   sess.Checkpoint,
		Reconciliation: recon,
		Reliability:    rel,
		Checks:         checkResults,
	}
	if _, err := e.reports.WriteVerification(verification); err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot write report:", err)
		return exitFailed
	}
	if _, err := e.reports.WriteProof(sess.SessionID, recon, rel); err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot write report:", err)
		return exitFailed
	}

	// The session is done once its verification report exists. A
	// session verified twice stays completed.
	if _, err := e.sessions.Complete(sess.SessionID); err != nil && !errors.Is(err, session.ErrSessionCompleted) {
		fmt.Fprintln(os.Stderr, "Error: cannot complete session:", err)
		return exitFailed
	}

	if e.jsonOut {
		printJSON(verification)
	} else {
		printVerification(verification)
	}

	if rel.Score >= e.config.ScoreThreshold {
		return exitOK
	}
	return exitFailed
}

// runList enumerates known sessions, newest first.
func runList(e env) int {
	summaries, err := e.sessions.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitFailed
	}

	if e.jsonOut {
		printJSON(summaries)
		return exitOK
	}

	if len(summaries) == 0 {
		fmt.Println("no sessions recorded")
		return exitOK
	}

	fmt.Printf("%-28s %-12s %-10s %7s  %s\n", "SESSION", "AGENT", "STATUS", "CLAIMS", "STARTED")
	for _, s := range summaries {
		fmt.Printf("%-28s %-12s %-10s %7d  %s\n",
			s.SessionID, s.AgentType, s.Status, s.ClaimCount,
			s.StartTime.Format("2006-01-02 15:04:05"))
	}
	return exitOK
}

// parseClaims decodes a claims document: either a JSON array of claims
// or a path to a file containing one.
func parseClaims(arg string) ([]claim.Claim, error) {
	data := []byte(arg)
	if !strings.HasPrefix(strings.TrimSpace(arg), "[") {
		fileData, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("claims must be a JSON array or a path to one: %w", err)
		}
		data = fileData
	}

	var claims []claim.Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// resolveDataDir returns the data directory from the flag, the
// ATTEST_DATA_DIR env var, or ~/.attest.
func resolveDataDir(flagValue string, environ []string) string {
	if flagValue != "" {
		return flagValue
	}
	for _, env := range environ {
		if strings.HasPrefix(env, "ATTEST_DATA_DIR=") {
			return strings.TrimPrefix(env, "ATTEST_DATA_DIR=")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attest"
	}
	return filepath.Join(home, ".attest")
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot encode output:", err)
		return
	}
	fmt.Println(string(data))
}

// printReconciliation renders a reconciliation report for the terminal.
func printReconciliation(r reconcile.Report) {
	fmt.Printf("claims verified: %d/%d (%.1f%%)\n",
		len(r.Verified), len(r.Results), r.ClaimedVsActual)

	for _, res := range r.Results {
		fmt.Printf("  [%s] %s\n", res.Status, describeResult(res))
		for _, issue := range res.Issues {
			fmt.Printf("      issue: %s\n", issue)
		}
	}

	if len(r.MissedChanges) > 0 {
		fmt.Printf("unreported changes: %d\n", len(r.MissedChanges))
		for _, ch := range r.MissedChanges {
			fmt.Printf("  %s %s\n", ch.Type, ch.Path)
		}
	}
}

// printVerification renders the combined report for the terminal.
func printVerification(v report.Verification) {
	fmt.Printf("session %s: reliability score %.1f\n", v.SessionID, v.Reliability.Score)
	fmt.Printf("  claim accuracy:     %.2f\n", v.Reliability.ClaimAccuracy)
	fmt.Printf("  execution coverage: %.2f\n", v.Reliability.ExecutionCoverage)
	fmt.Printf("  claimed vs actual:  %.1f%%\n", v.Reconciliation.ClaimedVsActual)

	for _, d := range v.Reliability.Discrepancies {
		fmt.Printf("  [%s] %s: %s\n", d.Severity, d.Type, d.Description)
	}
	for _, rec := range v.Reliability.Recommendations {
		fmt.Printf("  recommendation (%s): %s\n", rec.Priority, rec.Message)
	}
	for _, c := range v.Checks {
		fmt.Printf("  check %s: %s\n", c.Name, c.Status)
	}
}

func describeResult(res claim.Result) string {
	c := res.Claim
	switch {
	case c.Path != "":
		return fmt.Sprintf("%s %s", c.Type, c.Path)
	case c.Command != "":
		return fmt.Sprintf("%s %q", c.Type, c.Command)
	default:
		return string(c.Type)
	}
}
