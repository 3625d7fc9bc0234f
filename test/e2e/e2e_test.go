package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd_ComplexNestedStructures flattens a document with nested
// objects and arrays and checks the shape of the dump
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "jflat-e2e")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"features": ["logging", "metrics", "alerting"],
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"production": {"debug": false, "log_level": "info"}
			}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin", "user"]},
			{"id": 2, "name": "Bob", "roles": ["user"]}
		],
		"stats": {
			"success_rate": 0.9999,
			"response_times": [0.045, 0.067, 0.032, 0.051]
		}
	}`

	jsonFile := filepath.Join(tempDir, "complex.json")
	err = os.WriteFile(jsonFile, []byte(jsonContent), 0644)
	require.NoError(t, err)

	outputFile := filepath.Join(tempDir, "complex.txt")

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", outputFile)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	seen := make(map[string]bool, len(lines))
	previous := ""
	for _, line := range lines {
		key, _, found := strings.Cut(line, "=")
		require.True(t, found, "line without separator: %q", line)
		assert.False(t, seen[strings.ToLower(key)], "duplicate key %q", key)
		seen[strings.ToLower(key)] = true
		assert.LessOrEqual(t, strings.ToLower(previous), strings.ToLower(key), "keys out of order")
		previous = key
	}

	assert.Contains(t, lines, "/={object}")
	assert.Contains(t, lines, "/updated_at=NULL")
	assert.Contains(t, lines, "/config/enabled=TRUE")
	assert.Contains(t, lines, "/config/environments/production/debug=FALSE")
	assert.Contains(t, lines, "/stats/success_rate=0.9999")
	assert.Contains(t, lines, "/stats/response_times[3]=0.051")
	assert.Contains(t, lines, "/users[1]/roles[0]=user")
}

// TestEndToEnd_DenormalizeRoles turns a nested array into one row per element
func TestEndToEnd_DenormalizeRoles(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go",
		"csv", "-e", "/users/roles", "-p", ".", "-p", "../name", "-s", ",")
	cmd.Stdin = strings.NewReader(`{"users": [
		{"name": "Alice", "roles": ["admin", "user"]},
		{"name": "Bob", "roles": ["user"]},
		{"name": "Carol", "roles": []}
	]}`)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	// An empty array still yields one row for the array itself
	assert.Equal(t,
		"/users[0]/roles[0],admin,Alice,\n"+
			"/users[0]/roles[1],user,Alice,\n"+
			"/users[1]/roles[0],user,Bob,\n"+
			"/users[2]/roles,{array},Carol,\n",
		stdout.String())
}

// generateLargeJSON generates a large JSON file with the specified number of items
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	rng := rand.New(rand.NewSource(42))

	items := make([]map[string]interface{}, itemCount)

	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"created_at":  time.Now().Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":    "test",
				"priority":  rng.Intn(5) + 1,
				"processed": rng.Intn(2) == 1,
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)

	err = os.WriteFile(filePath, jsonData, 0644)
	require.NoError(t, err)
}

// TestEndToEnd_LargeArrayRowCount checks that one CSV row is produced per
// array element
func TestEndToEnd_LargeArrayRowCount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large input in short mode")
	}

	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "large.json")
	generateLargeJSON(t, jsonFile, 500)

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile,
		"csv", "-e", "/", "-p", "id", "-p", "metadata/priority")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	rows := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, rows, 500)
	assert.True(t, strings.HasPrefix(rows[0], "[0];1;"))
	assert.True(t, strings.HasPrefix(rows[499], "[499];500;"))
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{
			name:     "EmptyObject",
			json:     `{}`,
			expected: "/={object}\n",
		},
		{
			name:     "EmptyArray",
			json:     `[]`,
			expected: "/={array}\n",
		},
		{
			name:     "SingleValue",
			json:     `"just a string"`,
			expected: "/=just a string\n",
		},
		{
			name:     "SingleNumber",
			json:     `4.20e1`,
			expected: "/=4.20e1\n",
		},
		{
			name:     "SingleBoolean",
			json:     `true`,
			expected: "/=TRUE\n",
		},
		{
			name:     "SingleNull",
			json:     `null`,
			expected: "/=NULL\n",
		},
		{
			name:    "InvalidJSON",
			json:    `{"name": "Invalid JSON",}`,
			isError: true,
		},
		{
			name:    "MultipleValues",
			json:    `{} {}`,
			isError: true,
		},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			expected: "/level1/level2/level3/level4/level5/value=42\n",
		},
		{
			name:     "DeeplyNestedArray",
			json:     `[[[[[[42]]]]]]`,
			expected: "[0][0][0][0][0][0]=42\n",
		},
		{
			name:     "UnicodeKeys",
			json:     `{"ÉTÉ": 1, "été": 2, "zebra": 3}`,
			// Folded keys compare as UTF-8 bytes, so é sorts after z
			expected: "/zebra=3\n/ÉTÉ=2\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := exec.Command("go", "run", "../../main.go")
			cmd.Stdin = strings.NewReader(tc.json)
			var stdout bytes.Buffer
			cmd.Stdout = &stdout
			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()

			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				assert.Contains(t, stderr.String(), "JSON parsing error")
			} else {
				assert.NoError(t, err, "Unexpected error for %s: %s", tc.name, stderr.String())
				assert.True(t, strings.HasSuffix(stdout.String(), tc.expected),
					"Expected output not found for %s: %q", tc.name, stdout.String())
			}
		})
	}
}
