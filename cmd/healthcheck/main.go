// Command healthcheck probes the local DocNest server and exits non-zero
// unless it reports itself healthy. It is meant for container HEALTHCHECK use.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/ericfisherdev/docnest/internal/config"
)

const probeTimeout = 2 * time.Second

func main() {
	url := fmt.Sprintf("http://%s/api/v1/health", normalizeAddr(os.Getenv("DOCNEST_LISTEN_ADDR")))

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := probe(ctx, &http.Client{Timeout: probeTimeout}, url); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		cancel()
		os.Exit(1)
	}
}

// probe requires a 200 response whose body reports status "ok". A server that
// answers but cannot reach its database reports "unavailable".
func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("unhealthy: HTTP %d, status %q", resp.StatusCode, body.Status)
	}
	return nil
}

// normalizeAddr points the probe at loopback when the server binds every
// interface. The probe runs inside the same container as the server.
func normalizeAddr(raw string) string {
	if raw == "" {
		return config.DefaultListenAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return config.DefaultListenAddr
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
