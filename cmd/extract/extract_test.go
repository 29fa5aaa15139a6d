package extract

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cristhianchimbo50/sri-extractor/internal/config"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noBrowser struct{}

func (noBrowser) Launch(context.Context, string) (portal.Page, error) {
	return nil, errors.New("no browser in tests")
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "extract", Cmd.Use)
	flag := Cmd.Flags().Lookup("date")
	require.NotNil(t, flag)
	assert.Equal(t, "d", flag.Shorthand)
}

func TestRun_RequiresSavedSession(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Root = t.TempDir()
	c, err := container.NewContainer(cfg, container.WithLogger(&logging.MockLogger{}), container.WithLauncher(noBrowser{}))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	var out, status bytes.Buffer
	err = Run(context.Background(), c, &out, &status, report.FormatTable, "2025-03-05")
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrNoSavedSession)
	assert.Contains(t, err.Error(), "portal:")
	assert.Empty(t, out.String())
}
