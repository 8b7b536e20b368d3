package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-flowchart"
)

const orderFlow = `
name: order_flow
label: Order Flow
entity: Acme\Order
start_step: open
steps:
  - name: open
    label: Open
    position: [100, 100]
    allowed_transitions: [close]
  - name: closed
    label: Closed
    is_final: true
transitions:
  - name: start
    is_start: true
    step_to: open
  - name: close
    label: Close
    step_to: closed
    transition_definition: close_definition
transition_definitions:
  - name: close_definition
    condition: entity.amount > 0
`

const orderFields = `
Acme\Order:
  fields:
    - name: amount
      type: integer
    - name: customer
      type: manyToOne
      related_entity_name: Acme\Customer
Acme\Customer:
  fields:
    - name: name
      type: string
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func parseOutput(t *testing.T, out string) *flowchart.Definition {
	t.Helper()
	def, err := flowchart.ParseDefinition([]byte(out))
	require.NoError(t, err)
	return def
}

func TestValidateReportsValidWorkflow(t *testing.T) {
	code, out, _ := runCLI(t, "validate", writeFile(t, "flow.yaml", orderFlow))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "workflow order_flow is valid")
}

func TestValidateReportsDiagnostics(t *testing.T) {
	broken := strings.Replace(orderFlow, "step_to: closed", "step_to: archived", 1)
	code, out, stderr := runCLI(t, "validate", writeFile(t, "flow.yaml", broken))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, flowchart.DiagCodeUnknownStepTo)
	assert.Contains(t, stderr, "diagnostics")
}

func TestCloneStepPrintsDefinition(t *testing.T) {
	code, out, _ := runCLI(t, "clone-step", writeFile(t, "flow.yaml", orderFlow), "open")
	require.Equal(t, 0, code)

	def := parseOutput(t, out)
	require.Len(t, def.Steps, 3)
	clone := def.Steps[2]
	assert.Equal(t, "Copy of Open", clone.Label)
	require.Len(t, clone.AllowedTransitions, 1)
	assert.NotEqual(t, "close", clone.AllowedTransitions[0])
	assert.Len(t, def.Transitions, 3)
	assert.Len(t, def.TransitionDefinitions, 2)
}

func TestCloneStepSkipInsertWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.yaml")
	code, stdout, _ := runCLI(t, "clone-step", writeFile(t, "flow.yaml", orderFlow), "open", "--skip-insert", "-o", out)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	def := parseOutput(t, string(data))
	assert.Len(t, def.Steps, 2)
	assert.Len(t, def.Transitions, 3)

	clone := secondDocument[flowchart.Step](t, data)
	assert.True(t, clone.IsClone)
	assert.Equal(t, "Copy of Open", clone.Label)
	require.Len(t, clone.AllowedTransitions, 1)
	assert.Equal(t, def.Transitions[2].Name, clone.AllowedTransitions[0])
	for _, s := range def.Steps {
		assert.NotEqual(t, clone.Name, s.Name)
	}
}

func TestCloneTransitionSkipInsertPrintsClone(t *testing.T) {
	code, out, _ := runCLI(t, "clone-transition", writeFile(t, "flow.yaml", orderFlow), "close", "--skip-insert")
	require.Equal(t, 0, code)

	def := parseOutput(t, out)
	assert.Len(t, def.Transitions, 2)
	assert.Len(t, def.TransitionDefinitions, 2)

	clone := secondDocument[flowchart.Transition](t, []byte(out))
	assert.True(t, clone.IsClone)
	assert.Equal(t, "Copy of Close", clone.Label)
	assert.Equal(t, "closed", clone.StepTo)
	assert.Equal(t, def.TransitionDefinitions[1].Name, clone.TransitionDefinition)
}

func secondDocument[T any](t *testing.T, data []byte) T {
	t.Helper()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var first map[string]any
	require.NoError(t, dec.Decode(&first))
	var second T
	require.NoError(t, dec.Decode(&second))
	return second
}

func TestCloneStepUsesCatalog(t *testing.T) {
	catalog := writeFile(t, "fr.yaml", `"Copy of": "Copie de"`)
	code, out, _ := runCLI(t, "--catalog", catalog, "clone-step", writeFile(t, "flow.yaml", orderFlow), "open")
	require.Equal(t, 0, code)
	def := parseOutput(t, out)
	require.Len(t, def.Steps, 3)
	assert.Equal(t, "Copie de Open", def.Steps[2].Label)
}

func TestCloneTransition(t *testing.T) {
	code, out, _ := runCLI(t, "clone-transition", writeFile(t, "flow.yaml", orderFlow), "close")
	require.Equal(t, 0, code)
	def := parseOutput(t, out)
	assert.Len(t, def.Transitions, 3)
	assert.Len(t, def.TransitionDefinitions, 2)
}

func TestCloneUnknownStepFails(t *testing.T) {
	code, _, stderr := runCLI(t, "clone-step", writeFile(t, "flow.yaml", orderFlow), "ghost")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestAttributeAddsBinding(t *testing.T) {
	code, out, _ := runCLI(t, "attribute", writeFile(t, "flow.yaml", orderFlow), "entity.amount")
	require.Equal(t, 0, code)
	def := parseOutput(t, out)
	require.Len(t, def.Attributes, 1)
	assert.Equal(t, "entity_amount", def.Attributes[0].Name)
	assert.Equal(t, "entity.amount", def.Attributes[0].PropertyPath)
}

func TestFieldIDBothWays(t *testing.T) {
	flow := writeFile(t, "flow.yaml", orderFlow)
	fields := writeFile(t, "fields.yaml", orderFields)

	code, out, _ := runCLI(t, "field-id", flow, "entity.customer.name", "--fields", fields)
	require.Equal(t, 0, code)
	assert.Equal(t, `customer+Acme\Customer::name`, strings.TrimSpace(out))

	code, out, _ = runCLI(t, "field-id", flow, `customer+Acme\Customer::name`, "--fields", fields, "--reverse")
	require.Equal(t, 0, code)
	assert.Equal(t, "entity.customer.name", strings.TrimSpace(out))
}

func TestMissingDefinitionFile(t *testing.T) {
	code, _, stderr := runCLI(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "read definition")
}

func TestUnknownCommand(t *testing.T) {
	code, _, _ := runCLI(t, "explode")
	assert.NotEqual(t, 0, code)
}
