package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasings_Text(t *testing.T) {
	out, _, err := runCommand(t, "easings")
	require.NoError(t, err)
	assert.Contains(t, out, "linear (default)")
	assert.Contains(t, out, "easeInOutQuad")
	assert.Contains(t, out, "easeOutQuint")
}

func TestEasings_JSON(t *testing.T) {
	out, _, err := runCommand(t, "--format", "json", "easings")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Len(t, names, 13)
	assert.Contains(t, names, "linear")
	assert.Contains(t, names, "easeInCubic")
}
