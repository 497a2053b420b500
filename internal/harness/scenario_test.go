package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "product_to_checkout.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "product_to_checkout", scenario.Name)
	assert.Equal(t, "session-42", scenario.SessionID)
	assert.Equal(t, yaml.MappingNode, scenario.Config.Kind)
	require.Len(t, scenario.Catalog.Products, 1)
	assert.Equal(t, "Desk Lamp", scenario.Catalog.Products[0].Name)
	require.Len(t, scenario.Steps, 5)
	assert.Equal(t, StepPublish, scenario.Steps[0].Kind())
	assert.Equal(t, map[string]any{"sku": "A1"}, scenario.Steps[0].Payload)
	assert.Equal(t, StepSetCount, scenario.Steps[3].Kind())
	assert.Equal(t, 3, scenario.Steps[3].SetCount.Count)
	assert.Equal(t, StepCheckout, scenario.Steps[4].Kind())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: s\ndescription: d\nsteps:\n  - reset: true\n"), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, StepReset, scenario.Steps[0].Kind())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nsteps: [{reset: true}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: s\nsteps: [{reset: true}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: s\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions in one step",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true, checkout: true}]\n",
			wantErr: "exactly one action",
		},
		{
			name:    "payload without publish",
			yaml:    "name: s\ndescription: d\nsteps: [{click: x, payload: {a: 1}}]\n",
			wantErr: "payload is only valid with publish",
		},
		{
			name:    "set_count without sku",
			yaml:    "name: s\ndescription: d\nsteps: [{set_count: {count: 2}}]\n",
			wantErr: "sku is required for set_count",
		},
		{
			name:    "product without sku",
			yaml:    "name: s\ndescription: d\ncatalog: {products: [{name: x}]}\nsteps: [{reset: true}]\n",
			wantErr: "sku is required",
		},
		{
			name:    "config not a mapping",
			yaml:    "name: s\ndescription: d\nconfig: [1]\nsteps: [{reset: true}]\n",
			wantErr: "config must be a mapping",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertions: [{type: final_state}]\n",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "cart_count without sku",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertions: [{type: cart_count, count: 1}]\n",
			wantErr: "sku is required for cart_count",
		},
		{
			name:    "node_class without class",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertions: [{type: node_class, node: x}]\n",
			wantErr: "node and class are required",
		},
		{
			name:    "trace_order without names",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertions: [{type: trace_order}]\n",
			wantErr: "names list is required",
		},
		{
			name:    "negative count",
			yaml:    "name: s\ndescription: d\nsteps: [{reset: true}]\nassertions: [{type: cart_len, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStep_Kind(t *testing.T) {
	assert.Equal(t, StepDocument, Step{Document: "a.pdf"}.Kind())
	assert.Equal(t, StepKey, Step{Key: "Escape"}.Kind())
	assert.Equal(t, StepRemove, Step{Remove: "A1"}.Kind())
	assert.Equal(t, "", Step{}.Kind())
	assert.Equal(t, "", Step{Click: "a", Key: "b"}.Kind())
}
