package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TestingT is the subset of *testing.T used by the snapshot helpers,
// allowing test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// MatchesJSON marshals got and compares it with want after normalizing
// both, so key order and whitespace in want do not matter.
func MatchesJSON(t TestingT, got any, want string) {
	t.Helper()

	actual, err := normalize(got)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
		return
	}
	var decoded any
	if err := json.Unmarshal([]byte(want), &decoded); err != nil {
		t.Fatalf("invalid expected JSON: %v", err)
		return
	}
	expected, err := marshalIndent(decoded)
	if err != nil {
		t.Fatalf("failed to marshal expected JSON: %v", err)
		return
	}

	if !bytes.Equal(actual, expected) {
		t.Errorf("snapshot mismatch:\n%s", unifiedDiff(string(expected), string(actual)))
	}
}

// MatchesFile compares got against a golden JSON file. When
// NODEWARD_UPDATE_SNAPSHOTS=1 is set, the file is rewritten instead.
func MatchesFile(t TestingT, got any, path string) {
	t.Helper()

	if os.Getenv("NODEWARD_UPDATE_SNAPSHOTS") == "1" {
		if err := UpdateFile(got, path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: NODEWARD_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}
	MatchesJSON(t, got, string(data))
}

// UpdateFile writes got to path as indented JSON, creating directories as
// needed.
func UpdateFile(got any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := normalize(got)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// normalize round-trips v through a generic value so struct field order
// and map order collapse to sorted keys.
func normalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return marshalIndent(decoded)
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	maxLen := max(len(expectedLines), len(actualLines))
	for i := range maxLen {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
