// Command spandemo serves an in-memory widget collection through page and dated
// envelopes, with Filter header and page/size query parameter binding.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("spandemo"),
		kong.Description("Serve widgets as paged and dated envelopes."),
		kong.UsageOnError(),
		kong.DefaultEnvars("SPANDEMO"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.FatalIfErrorf(cli.Run(ctx, os.Stderr))
}
