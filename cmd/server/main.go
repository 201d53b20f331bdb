// Package main initializes and starts the GophDeck HTTPS server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and TLS.
package main

import (
	"cmp"
	"crypto/tls"
	"fmt"
	"os"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophDeck/internal/config"
	"github.com/atinyakov/GophDeck/internal/db"
	"github.com/atinyakov/GophDeck/internal/logger"
	"github.com/atinyakov/GophDeck/internal/repository"
	"github.com/atinyakov/GophDeck/internal/server/handler/http"
	"github.com/atinyakov/GophDeck/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Open the document database.
	conn, err := db.Open(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer conn.Close()

	var repo service.DocumentRepository
	if db.IsPostgresDSN(options.DatabaseDSN) {
		repo = repository.NewPostgresDocumentRepository(conn)
	} else {
		repo = repository.NewSQLiteDocumentRepository(conn)
	}

	documentService := service.NewDocumentService(repo)
	documentHandler := &http.DocumentHandler{DocumentService: documentService, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(documentHandler, zapLogger, nil, options.SignatureSkew)

	// Load server TLS certificate and key.
	cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
	if err != nil {
		zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
	}

	// Clients authenticate by signing requests, so no client certificates.
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	// Create and start the HTTPS server.
	server := &nethttp.Server{
		Addr:      options.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
	if err := server.ListenAndServeTLS("", ""); err != nil {
		zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
	}
}
