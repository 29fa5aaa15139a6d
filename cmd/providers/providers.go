// Package providers handles the disabled-issuer registry commands
package providers

import (
	"fmt"
	"io"

	"github.com/cristhianchimbo50/sri-extractor/cmd/common"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/internal/registry"
	"github.com/cristhianchimbo50/sri-extractor/internal/report"

	"github.com/spf13/cobra"
)

var name string

// Cmd represents the providers command
var Cmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage issuers excluded from downloads and listings",
	Long: `Manage the registry of disabled issuers. Invoices of a disabled issuer are
not downloaded and are hidden from listings.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known issuers, disabled first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		out, closeOut, err := root.OpenOutput(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = closeOut() }()
		return List(c.GetRegistry(), out, cmd.ErrOrStderr(), root.GetFormat())
	},
}

func setCmd(use, short string, action Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <ruc>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			return Apply(c.GetRegistry(), cmd.OutOrStdout(), action, args[0], name)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Legal name to record for the issuer")
	return cmd
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(setCmd("disable", "Exclude an issuer", ActionDisable))
	Cmd.AddCommand(setCmd("enable", "Include an issuer again", ActionEnable))
	Cmd.AddCommand(setCmd("toggle", "Flip the disabled flag of an issuer", ActionToggle))
}

// Action is a registry update.
type Action int

const (
	ActionDisable Action = iota
	ActionEnable
	ActionToggle
)

// List renders every registry entry and prints the counts to status.
func List(reg *registry.Registry, out, status io.Writer, format report.Format) error {
	total, disabled := reg.Counts()
	_, _ = fmt.Fprintf(status, "issuers: %d, disabled: %d\n", total, disabled)
	return report.Render(out, format, report.ProviderRows(reg.ListAll()))
}

// Apply runs action for ruc and reports the resulting state.
func Apply(reg *registry.Registry, out io.Writer, action Action, ruc, legalName string) error {
	var (
		disabled bool
		err      error
	)
	before := reg.IsDisabled(ruc)
	switch action {
	case ActionDisable:
		disabled, err = true, reg.SetDisabled(ruc, legalName, true)
	case ActionEnable:
		disabled, err = false, reg.SetDisabled(ruc, legalName, false)
	case ActionToggle:
		disabled, err = reg.Toggle(ruc, legalName)
	default:
		return fmt.Errorf("unknown registry action %d", action)
	}
	if err != nil {
		return common.StatusError(err)
	}

	state := "enabled"
	if disabled {
		state = "disabled"
	}
	if before == disabled {
		_, err = fmt.Fprintf(out, "%s is already %s\n", ruc, state)
		return err
	}
	_, err = fmt.Fprintf(out, "%s is now %s\n", ruc, state)
	return err
}
