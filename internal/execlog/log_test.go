package execlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestLog_AppendAndReadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution-log.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	records := []Record{
		{SessionID: "s1", ToolName: "Write", Parameters: map[string]string{"file_path": "a.go"}, Success: true},
		{SessionID: "s2", ToolName: "Bash", Parameters: map[string]string{"command": "go test ./..."}, Success: true},
		{SessionID: "s1", ToolName: "Edit", Parameters: map[string]string{"file_path": "a.go"}, Success: false},
	}
	for _, r := range records {
		if err := log.Append(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := log.ReadSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for s1, got %d", len(got))
	}
	if got[0].ToolName != "Write" || got[1].ToolName != "Edit" {
		t.Errorf("records out of append order: %+v", got)
	}
}

func TestLog_AppendFillsIDAndTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	if err := log.Append(Record{SessionID: "s1", ToolName: "Write"}); err != nil {
		t.Fatal(err)
	}

	got, err := log.ReadSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ExecutionID == "" {
		t.Error("expected generated execution ID")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected generated timestamp")
	}
}

func TestLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")

	content := `{"sessionId":"s1","executionId":"e1","toolName":"Write","success":true}
this is not json
{"sessionId":"s1","executionId":"e2","toolName":"Bash","success":false}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSessionFile(path, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(got))
	}
}

func TestReadSessionFile_MissingFile(t *testing.T) {
	got, err := ReadSessionFile(filepath.Join(t.TempDir(), "absent.jsonl"), "s1")
	if err != nil {
		t.Fatalf("missing log must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestSanitize_TruncatesOversizedValues(t *testing.T) {
	big := strings.Repeat("x", MaxParamLen+100)
	bigResult := strings.Repeat("y", MaxResultLen+100)

	r := Sanitize(Record{
		Parameters: map[string]string{"content": big},
		Result:     bigResult,
	})

	if len(r.Parameters["content"]) >= len(big) {
		t.Error("expected parameter value truncated")
	}
	if !strings.HasSuffix(r.Parameters["content"], "...[truncated]") {
		t.Error("expected truncation marker on parameter")
	}
	if len(r.Result) >= len(bigResult) {
		t.Error("expected result truncated")
	}
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	// A 4-byte rune straddling the limit must be dropped whole, never
	// left as an invalid partial sequence.
	value := strings.Repeat("x", MaxParamLen-2) + "\U0001F600"

	r := Sanitize(Record{Parameters: map[string]string{"content": value}})

	got := r.Parameters["content"]
	if !utf8.ValidString(got) {
		t.Errorf("truncated value is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Error("expected truncation marker")
	}
	if strings.Contains(strings.TrimSuffix(got, "...[truncated]"), "\U0001F600") {
		t.Error("straddling rune should have been dropped entirely")
	}
}

func TestSanitize_RedactsSecrets(t *testing.T) {
	r := Sanitize(Record{Parameters: map[string]string{
		"api_key":    "sk-12345",
		"auth_token": "bearer xyz",
		"file_path":  "main.go",
	}})

	if r.Parameters["api_key"] != "[REDACTED]" {
		t.Errorf("api_key not redacted: %s", r.Parameters["api_key"])
	}
	if r.Parameters["auth_token"] != "[REDACTED]" {
		t.Errorf("auth_token not redacted: %s", r.Parameters["auth_token"])
	}
	if r.Parameters["file_path"] != "main.go" {
		t.Errorf("file_path should be untouched: %s", r.Parameters["file_path"])
	}
}

func TestSanitize_DoesNotMutateOriginal(t *testing.T) {
	original := Record{
		Timestamp:  time.Now(),
		Parameters: map[string]string{"password": "hunter2"},
	}

	Sanitize(original)

	if original.Parameters["password"] != "hunter2" {
		t.Error("sanitize must not mutate the caller's record")
	}
}

func TestNewExecutionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewExecutionID()
		if seen[id] {
			t.Fatalf("duplicate execution ID: %s", id)
		}
		seen[id] = true
	}
}
