package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0o644))
	return path
}

func TestAgainst_Valid(t *testing.T) {
	value := map[string]any{"id": float64(7), "name": "ada"}
	assert.NoError(t, Against(value, writeSchema(t)))
}

func TestAgainst_Invalid(t *testing.T) {
	value := map[string]any{"id": "not-a-number"}
	err := Against(value, writeSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestAgainst_MissingSchemaFile(t *testing.T) {
	err := Against(map[string]any{}, "/does/not/exist.json")
	assert.Error(t, err)
}
