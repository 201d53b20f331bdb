// Package main runs the GophDeck client shell.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/GophDeck/internal/client/identity"
	"github.com/atinyakov/GophDeck/internal/client/session"
	"github.com/atinyakov/GophDeck/internal/client/shell"
	"github.com/atinyakov/GophDeck/internal/client/transport"
	"github.com/atinyakov/GophDeck/internal/config"
)

var (
	version   string
	buildDate string
)

func main() {
	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if options.ShowVersion {
		fmt.Printf("GophDeck Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zapLogger := zap.NewNop()
	if options.Verbose {
		if zapLogger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
	}
	defer func() { _ = zapLogger.Sync() }()

	client, err := transport.NewTLSClient(options.CAFile)
	if err != nil {
		log.Fatal(err)
	}
	dial := func(secret identity.Secret) (transport.Transport, error) {
		return transport.NewHTTPClient(options.ServerURL, client, secret)
	}
	ctl := session.New(identity.NewFileProvider(options.KeyFile), dial, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := shell.New(ctl, os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatal(err)
	}
}
