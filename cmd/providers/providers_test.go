package providers

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/registry"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(filepath.Join(t.TempDir(), "disabled_providers.xml"), &logging.MockLogger{})
}

func TestCommandMetadata(t *testing.T) {
	var names []string
	for _, sub := range Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "disable", "enable", "toggle"}, names)
}

func TestApply(t *testing.T) {
	reg := newRegistry(t)
	var out bytes.Buffer

	require.NoError(t, Apply(reg, &out, ActionDisable, "1790012345001", "ACME"))
	assert.True(t, reg.IsDisabled("1790012345001"))
	assert.Contains(t, out.String(), "1790012345001 is now disabled")

	out.Reset()
	require.NoError(t, Apply(reg, &out, ActionToggle, "1790012345001", ""))
	assert.False(t, reg.IsDisabled("1790012345001"))
	assert.Contains(t, out.String(), "is now enabled")

	out.Reset()
	require.NoError(t, Apply(reg, &out, ActionEnable, "0990000000001", "OTHER"))
	assert.False(t, reg.IsDisabled("0990000000001"))
	assert.Contains(t, out.String(), "0990000000001 is already enabled")

	assert.Error(t, Apply(reg, &out, Action(42), "1", ""))
}

func TestList(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.SetDisabled("200", "B", true))
	require.NoError(t, reg.SetDisabled("100", "A", false))

	var out, status bytes.Buffer
	require.NoError(t, List(reg, &out, &status, report.FormatCSV))

	assert.Equal(t, "issuers: 2, disabled: 1\n", status.String())
	assert.Contains(t, out.String(), "200")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("200")), bytes.Index(out.Bytes(), []byte("100")), "disabled issuers first")
}
