// Package suppliers handles the accounting supplier master command
package suppliers

import (
	"context"
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/models"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/spf13/cobra"
)

var testOnly bool

// Cmd represents the suppliers command
var Cmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List the accounting supplier master",
	Long: `List the suppliers registered in the accounting database, ordered by legal
name. With --test only the database connection is checked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		repo, err := c.GetAccounting()
		if err != nil {
			return common.StatusError(err)
		}
		if testOnly {
			return Test(cmd.Context(), repo, cmd.OutOrStdout())
		}
		out, closeOut, err := root.OpenOutput(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = closeOut() }()
		return Run(cmd.Context(), repo, out, cmd.ErrOrStderr(), root.GetFormat())
	},
}

func init() {
	Cmd.Flags().BoolVar(&testOnly, "test", false, "Only test the database connection")
}

// Source loads the supplier master.
type Source interface {
	Suppliers(ctx context.Context) ([]models.Supplier, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run renders the supplier master.
func Run(ctx context.Context, src Source, out, status io.Writer, format report.Format) error {
	suppliers, err := src.Suppliers(ctx)
	if err != nil {
		return common.StatusError(err)
	}
	_, _ = fmt.Fprintf(status, "suppliers: %d\n", len(suppliers))
	return report.Render(out, format, report.SupplierRows(suppliers))
}

// Test reports whether the database answers.
func Test(ctx context.Context, p Pinger, out io.Writer) error {
	if err := p.Ping(ctx); err != nil {
		return common.StatusError(err)
	}
	_, err := fmt.Fprintln(out, "oracle: connection OK")
	return err
}
