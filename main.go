package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigearthnet-go/bencommon/cmd"
	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/buildinfo"
)

// Set with -ldflags at build time.
var (
	version   = ""
	buildDate = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := cmdutil.NewEnv(buildinfo.NewContext(version, buildDate))
	rootCmd := cmd.RootCommand(env)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cmdutil.Styles.Error.Render("Error: "+err.Error()))
		env.Close()
		return 1
	}
	return 0
}
