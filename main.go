package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cristhianchimbo50/sri-extractor/cmd/detail"
	"github.com/cristhianchimbo50/sri-extractor/cmd/extract"
	"github.com/cristhianchimbo50/sri-extractor/cmd/local"
	"github.com/cristhianchimbo50/sri-extractor/cmd/login"
	"github.com/cristhianchimbo50/sri-extractor/cmd/payments"
	"github.com/cristhianchimbo50/sri-extractor/cmd/providers"
	"github.com/cristhianchimbo50/sri-extractor/cmd/root"
	"github.com/cristhianchimbo50/sri-extractor/cmd/suppliers"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(login.Cmd)
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(local.Cmd)
	root.Cmd.AddCommand(detail.Cmd)
	root.Cmd.AddCommand(providers.Cmd)
	root.Cmd.AddCommand(payments.Cmd)
	root.Cmd.AddCommand(suppliers.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
