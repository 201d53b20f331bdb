package transport

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/GophDeck/internal/auth"
	"github.com/atinyakov/GophDeck/internal/client/identity"
)

const documentsPath = "/api/documents/"

// maxResponseSize bounds how much of a document body is read.
const maxResponseSize = 1 << 20

// HTTPClient talks to a GophDeck server. Every request is signed with Key.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	Key     ed25519.PrivateKey
	// Now is used for request timestamps; time.Now when nil.
	Now func() time.Time
}

// NewHTTPClient returns a transport that signs requests with the key derived
// from secret.
func NewHTTPClient(baseURL string, client *http.Client, secret identity.Secret) (*HTTPClient, error) {
	key, err := secret.PrivateKey()
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Key:     key,
	}, nil
}

// NewTLSClient builds an *http.Client that trusts only the CA at caPath.
// An empty caPath uses the system roots.
func NewTLSClient(caPath string) (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if caPath != "" {
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caPool
	}
	transport := &http.Transport{TLSClientConfig: tlsConfig}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

func (c *HTTPClient) Exists(ctx context.Context, id identity.Identity) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, id, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp)
	}
}

func (c *HTTPClient) Get(ctx context.Context, id identity.Identity) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, statusError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

func (c *HTTPClient) Put(ctx context.Context, id identity.Identity, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	resp, err := c.do(ctx, http.MethodPut, id, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method string, id identity.Identity, body []byte) (*http.Response, error) {
	endpoint := c.BaseURL + documentsPath + url.PathEscape(id.String())

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	auth.SignRequest(req, c.Key, body, now())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, documentsPath, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
