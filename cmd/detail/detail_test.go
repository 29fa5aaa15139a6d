package detail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/config"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"
	"github.com/cristhianchimbo50/sri-extractor/internal/sriparser/sritest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noBrowser struct{}

func (noBrowser) Launch(context.Context, string) (portal.Page, error) {
	return nil, errors.New("no browser in tests")
}

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Root = t.TempDir()
	c, err := container.NewContainer(cfg, container.WithLogger(&logging.MockLogger{}), container.WithLauncher(noBrowser{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeFixture(t *testing.T) string {
	t.Helper()
	inv := sritest.Invoice{
		Total: "121.90",
		Lines: []sritest.Line{
			{Code: "P-1", Desc: "Cemento", Qty: "2", UnitPrice: "50", Discount: "1", Total: "99", VATBase: "99", VAT: "14.85"},
			{Code: "p-1", Desc: "Cemento", Qty: "1", UnitPrice: "50", Total: "50", VATBase: "50", VAT: "7.50"},
		},
	}
	path := filepath.Join(t.TempDir(), "invoice.xml")
	require.NoError(t, os.WriteFile(path, []byte(inv.Envelope()), 0600))
	return path
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "detail <invoice.xml>", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("retention"))
	assert.NotNil(t, Cmd.Flags().Lookup("transaction"))
}

func TestRun_Table(t *testing.T) {
	c := newContainer(t)
	var out, status bytes.Buffer

	require.NoError(t, Run(context.Background(), c, &out, &status, report.FormatTable, writeFixture(t), Options{}))

	text := out.String()
	assert.Contains(t, text, "INVOICE")
	assert.Contains(t, text, "ITEMS")
	assert.Contains(t, text, "TOTALS")
	assert.Contains(t, text, "001-002-000000123")
	assert.Contains(t, text, "121.90")
	assert.NotContains(t, text, "RETENTION")
	assert.Empty(t, status.String())
}

func TestBuild_GroupsItems(t *testing.T) {
	view, err := Build(context.Background(), newContainer(t), writeFixture(t), Options{})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Lines)
	assert.Equal(t, "P-1", view.Items[0].Code)
	assert.Nil(t, view.Retention)
}

func TestRun_RetentionWithoutDatabase(t *testing.T) {
	c := newContainer(t)
	var out, status bytes.Buffer

	require.NoError(t, Run(context.Background(), c, &out, &status, report.FormatJSON, writeFixture(t), Options{Retention: true}))

	assert.Contains(t, status.String(), "oracle:")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "header")
	assert.Contains(t, decoded, "retention")
}

func TestRun_MissingFile(t *testing.T) {
	var out, status bytes.Buffer
	err := Run(context.Background(), newContainer(t), &out, &status, report.FormatTable, filepath.Join(t.TempDir(), "nope.xml"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filesystem:")
}
