// Package main runs the offline facecode command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	facecodecmd "github.com/louisbranch/warband-face/internal/cmd/facecode"
	"github.com/louisbranch/warband-face/internal/platform/config"
)

func main() {
	root, err := facecodecmd.NewRootCmd()
	if err != nil {
		config.Exitf("facecode: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		config.Exitf("facecode: %v", err)
	}
}
