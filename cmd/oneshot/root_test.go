package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestDemoRunsHandlerOnce(t *testing.T) {
	out, err := execute(t, "demo", "--emits", "4")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "You should not see me again"))
	assert.Contains(t, out, "(OK click 1)")
	assert.Contains(t, out, "emits: 4, handler calls: 1")
	assert.Contains(t, out, "armed connectors: 1\n")
	assert.Contains(t, out, "armed connectors: 0 (fired 1, disarmed 0)")
}

func TestDemoButtonLabel(t *testing.T) {
	out, err := execute(t, "demo", "--button", "Cancel", "-n", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "(Cancel click 1)")
	assert.NotContains(t, out, "(OK click")
}

func TestDemoQueued(t *testing.T) {
	out, err := execute(t, "demo", "-n", "10", "--queue", "4")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "You should not see me again"))
	assert.Contains(t, out, "emits: 10, handler calls: 1")
}

func TestDemoWithoutEmitsLeavesConnectorArmed(t *testing.T) {
	out, err := execute(t, "demo", "-n", "0")
	require.NoError(t, err)

	assert.NotContains(t, out, "You should not see me again")
	assert.Contains(t, out, "armed connectors: 1 (fired 0, disarmed 0)")
}

func TestDemoMetrics(t *testing.T) {
	out, err := execute(t, "demo", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "oneshot_fired_total 1")
	assert.Contains(t, out, "oneshot_armed_connectors 0")
	assert.Contains(t, out, "oneshot_double_fires_total 0")
}

func TestDemoRejectsNegativeEmits(t *testing.T) {
	_, err := execute(t, "demo", "--emits=-1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oneshot version dev")
}
