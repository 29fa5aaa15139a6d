// Package login handles the portal authentication command
package login

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/container"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"

	"github.com/spf13/cobra"
)

// Cmd represents the login command
var Cmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to SRI en línea and save the session",
	Long: `Sign in to SRI en línea with the configured RUC and password
(SRI_USER / SRI_PASSWORD), open the received-invoices page and save the
browser session for later extractions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, cmd.OutOrStdout())
	},
}

// Run authenticates with the configured credentials and saves the session.
func Run(ctx context.Context, c *container.Container, out io.Writer) error {
	cfg := c.GetConfig()
	if !cfg.HasCredentials() {
		return fmt.Errorf("%s: credentials are not configured (set SRI_USER and SRI_PASSWORD)", common.SubsystemPortal)
	}

	manager := c.GetSessionManager()
	if err := manager.Login(ctx, cfg.Credentials.RUC, cfg.Credentials.Password); err != nil {
		_ = manager.Close()
		return common.StatusError(err)
	}

	_, err := fmt.Fprintf(out, "Session saved to %s (%s)\n", c.GetLayout().SessionStatePath(), portal.StateSaved)
	return err
}
