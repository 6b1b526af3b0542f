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

// CreateCheckpointDirectory creates a local checkpoint directory holding
// the files a fine-tuning run leaves behind.
func CreateCheckpointDirectory(t *testing.T, baseDir, name string) string {
	t.Helper()

	dir := filepath.Join(baseDir, name)
	files := map[string]string{
		"config.json":            `{"model_type":"m2m_100"}`,
		"generation_config.json": `{"max_length":30}`,
		"tokenizer.json":         `{"version":"1.0"}`,
		"model.safetensors":      strings.Repeat("w", 64),
	}
	for filename, content := range files {
		CreateTestFile(t, filepath.Join(dir, filename), []byte(content))
	}

	return dir
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
