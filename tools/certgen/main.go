// Package main generates a Certificate Authority (CA) and a server certificate
// for the GophDeck server, writing them under the output directory.
// An existing CA is reused so clients keep their pinned ca.crt.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/GophDeck/internal/certgen"
)

const (
	caValidity     = 10 * 365 * 24 * time.Hour
	serverValidity = 365 * 24 * time.Hour
)

func main() {
	dir := flag.String("out", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts)); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	caCertPath := filepath.Join(dir, "ca.crt")
	caKeyPath := filepath.Join(dir, "ca.key")

	// 1. Load or generate the CA
	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if errors.Is(err, os.ErrNotExist) {
		certPEM, keyPEM, genErr := certgen.GenerateCA("GophDeck CA", caValidity)
		if genErr != nil {
			return genErr
		}
		if err := writeCertAndKey(caCertPath, caKeyPath, certPEM, keyPEM); err != nil {
			return err
		}
		caCert, caKey, err = certgen.ParseCACredentials(certPEM, keyPEM)
	}
	if err != nil {
		return err
	}

	// 2. Server certificate signed by the CA
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(hosts, caCert, caKey, serverValidity)
	if err != nil {
		return err
	}
	return writeCertAndKey(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM)
}

func splitHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// writeCertAndKey writes PEM material; the key file is private to the owner.
func writeCertAndKey(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write cert: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	return nil
}
