// Package main starts the face editor service and handles termination.
//
// The process serves the face code HTTP API and the live editing WebSocket;
// each connection owns one editing session.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	editorcmd "github.com/louisbranch/warband-face/internal/cmd/editor"
)

func main() {
	cfg, err := editorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[EDITOR] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := editorcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
