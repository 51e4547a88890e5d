package agent

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/aura/internal/tools"
)

func TestBuildDefaults(t *testing.T) {
	m := Build("", "", tools.NewExecutor(nil))
	assert.Equal(t, DefaultName, m.Name)
	assert.Equal(t, DefaultModel, m.Model)
	assert.Contains(t, m.Instruction, "simulate_remediation_execution()")
	require.Len(t, m.Tools, 4)
}

func TestWriteJSONAndYAML(t *testing.T) {
	m := Build("aura_test", "gemini-test", tools.NewExecutor(nil))

	var jsonBuf bytes.Buffer
	require.NoError(t, m.Write(&jsonBuf, "json"))
	var decoded Manifest
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, "aura_test", decoded.Name)
	assert.Len(t, decoded.Tools, 4)

	var yamlBuf bytes.Buffer
	require.NoError(t, m.Write(&yamlBuf, "yaml"))
	var fromYAML Manifest
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, "gemini-test", fromYAML.Model)
	assert.Equal(t, tools.ToolProcessAlert, fromYAML.Tools[0].Name)

	assert.Error(t, m.Write(&yamlBuf, "toml"))
}
