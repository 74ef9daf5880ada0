package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jovenva-attendance/internal/shiftctl"

	"github.com/alecthomas/kong"
)

func main() {
	var cli shiftctl.CLI
	ctx := kong.Parse(&cli,
		kong.Name("shiftctl"),
		kong.Description("Night-shift calendar calculations for operators."),
		kong.UsageOnError(),
	)

	runCtx, err := cli.NewContext(os.Stdout, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx.Ctx = sigCtx

	if err := ctx.Run(runCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
