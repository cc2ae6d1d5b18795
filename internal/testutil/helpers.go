package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateRunDirectory lays out a complete run in a temp directory: a
// config.properties, an accounts CSV and an input CSV. It returns the
// directory and the config file path. Extra properties are appended to the
// generated config verbatim.
func CreateRunDirectory(t *testing.T, input string, extraProperties string) (string, string) {
	t.Helper()

	dir := t.TempDir()

	accounts := "username,password,kind,key,secret\n" +
		"alice,pw,google,test-api-key\n" +
		"bob,pw,bing,test-client,test-secret\n"
	CreateTestFile(t, filepath.Join(dir, "accounts.csv"), []byte(accounts))
	CreateTestFile(t, filepath.Join(dir, "input.csv"), []byte(input))

	config := "inputCsv=" + filepath.Join(dir, "input.csv") + "\n" +
		"outputCsv=" + filepath.Join(dir, "output.csv") + "\n" +
		"accountsCsv=" + filepath.Join(dir, "accounts.csv") + "\n" +
		extraProperties
	configPath := filepath.Join(dir, "config.properties")
	CreateTestFile(t, configPath, []byte(config))

	return dir, configPath
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected string) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != expected {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
