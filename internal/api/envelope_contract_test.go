package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reader clients embed the same fixtures to verify parsing compatibility.
func loadFixture(t *testing.T, name string) map[string]any {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", "envelope", name))
	require.NoError(t, err, "contract tests require the shared fixtures")

	var fixture map[string]any
	require.NoError(t, json.Unmarshal(raw, &fixture))
	return fixture
}

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_SuccessMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success.json")

	result, err := EnvelopeTransformer(nil, "200", map[string]any{"id": "rsess-1", "durationSeconds": 300})
	require.NoError(t, err)
	got := marshalToMap(t, result)

	assert.Equal(t, expected["v"], got["v"])
	assert.Equal(t, expected["success"], got["success"])
	assert.Contains(t, got, "data")
	for key := range got {
		assert.Contains(t, expected, key, "unexpected field %s", key)
	}
}

func TestEnvelopeContract_SuccessNullDataMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success_null_data.json")

	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)
	got := marshalToMap(t, result)

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_SimpleErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error_simple.json")

	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "Resource not found"})
	require.NoError(t, err)
	got := marshalToMap(t, result)

	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_DetailedErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error_detailed.json")

	result, err := EnvelopeTransformer(nil, "400", &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"durationSeconds": "must be at least 1"},
	})
	require.NoError(t, err)
	got := marshalToMap(t, result)

	assert.Equal(t, expected, got)
}

// The version field must be named exactly "v"; clients break silently otherwise.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)
	got := marshalToMap(t, result)

	assert.Contains(t, got, "v")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
}
