package distmatrix

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultProbeURL is a well-known host used to distinguish "no
// network" from "API unreachable"
const DefaultProbeURL = "https://www.google.com"

// Pre-flight checks are advisory. The resolver does not depend on
// them; the CLI runs them before starting a batch so an obvious
// problem fails in seconds instead of after the first retry cycle.

// CheckNetwork verifies basic outbound connectivity by fetching
// probeURL
func CheckNetwork(ctx context.Context, probeURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("network probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("network probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// CheckAPI issues a one-element probe query to verify the API is
// reachable and the credential is accepted. An ErrAuthRejected result
// means the key is bad.
func (c *Client) CheckAPI(ctx context.Context) error {
	_, err := c.Query(ctx, "New York,NY", []string{"Los Angeles,CA"})
	if err != nil {
		return fmt.Errorf("api probe: %w", err)
	}
	return nil
}
