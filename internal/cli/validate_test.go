package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, format, configYAML string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogview.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))
	}

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format, ConfigPath: path})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_Defaults(t *testing.T) {
	out, err := executeValidate(t, "text", "")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Config valid")
}

func TestValidate_ValidJSON(t *testing.T) {
	out, err := executeValidate(t, "json", "shop:\n  product_lookup: \"http://shop/lookup?sku=[SKU]\"\n")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestValidate_ReportsProblems(t *testing.T) {
	out, err := executeValidate(t, "json", `
viewer:
  image_max_height_fraction: 1.5
server:
  addr: ""
`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.NotEmpty(t, resp.Data.Problems)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidConfig, resp.Error.Code)
}

func TestValidate_TextProblems(t *testing.T) {
	out, err := executeValidate(t, "text", "checkout:\n  proxy_url: ftp://proxy\n")
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "proxy_url")
}

func TestValidate_UnreadableConfig(t *testing.T) {
	out, err := executeValidate(t, "text", "viewer: [unclosed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_CONFIG]")
}
