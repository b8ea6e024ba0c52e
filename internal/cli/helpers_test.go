package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const userDiagram = `{
	"nodes": [
		{"id": "user", "type": "entity", "position": {"x": 0, "y": 0}, "data": {"nodeType": "entity", "label": "User"}},
		{"id": "user_id", "type": "attribute", "position": {"x": 0, "y": 0}, "data": {"nodeType": "attribute", "label": "id"}},
		{"id": "loose", "type": "attribute", "position": {"x": 0, "y": 0}, "data": {"nodeType": "attribute", "label": "loose"}}
	],
	"edges": [{"id": "e1", "source": "user", "target": "user_id", "kind": "attribute"}]
}`

// newTestCLI isolates the CLI from the user's config and environment.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envServiceURL, "")
	t.Setenv(envToken, "")
	return New(io.Discard, LogInfo)
}

// captureOutput redirects command output into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

// execute runs the root command with args.
func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// writeFile writes content into a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
