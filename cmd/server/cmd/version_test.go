package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func setBuildVars(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version = origVersion
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	setBuildVars(t, "1.0.0", "abc123", "2026-01-27T12:00:00Z")

	output, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	expectedStrings := []string{
		"Tripline Date Context Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version:",
		"Platform:",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestVersionCommandDefaultValues(t *testing.T) {
	setBuildVars(t, "dev", "unknown", "unknown")

	output, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	expectedStrings := []string{
		"Version:    dev",
		"Git commit: unknown",
		"Build date: unknown",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestVersionCommandJSON(t *testing.T) {
	setBuildVars(t, "1.2.3", "", "2026-01-27T12:00:00Z")

	output, err := runRoot(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if got["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", got["version"])
	}
	if got["git_commit"] != "unknown" {
		t.Errorf("git_commit = %q, want unknown", got["git_commit"])
	}
	if got["go_version"] == "" {
		t.Error("expected go_version to be set")
	}
}

func TestVersionCommandHelp(t *testing.T) {
	output, err := runRoot(t, "version", "--help")
	if err != nil {
		t.Fatalf("version command --help failed: %v", err)
	}

	if !strings.Contains(output, "Print the version number") {
		t.Errorf("expected help text to contain version description, got:\n%s", output)
	}
}
