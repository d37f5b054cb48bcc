package distmatrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Distance Matrix JSON endpoint
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

const metersPerMile = 1609.344

// ErrAuthRejected signals that the service refused the API credential.
// Retrying with the same key cannot succeed.
var ErrAuthRejected = errors.New("distance matrix: request denied")

// Status classifies the outcome of a single origin/destination element
type Status string

const (
	StatusOK       Status = "ok"
	StatusNoRoute  Status = "no_route"
	StatusNotFound Status = "not_found"
)

// Element is one entry of a query response, aligned to the request's
// destination order
type Element struct {
	Status Status
	Miles  float64 // Road distance, set only when Status is ok
}

// Querier issues one distance query for an origin against a group of
// destinations
type Querier interface {
	Query(ctx context.Context, origin string, destinations []string) ([]Element, error)
}

// Client implements Querier against the Google Distance Matrix API
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a Distance Matrix client
func NewClient(key string, timeout time.Duration, userAgent string) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   DefaultBaseURL,
		userAgent: userAgent,
	}
}

// Query requests travel distances from origin to every destination in
// a single call. The returned slice is aligned to destinations order
// and always has the same length on success.
func (c *Client) Query(ctx context.Context, origin string, destinations []string) ([]Element, error) {
	if len(destinations) == 0 {
		return nil, errors.New("query: empty destination group")
	}

	params := url.Values{
		"origins":      {origin},
		"destinations": {strings.Join(destinations, "|")},
		"units":        {"imperial"},
		"key":          {c.key},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("distance matrix API error: status %d: %s", resp.StatusCode, body)
	}

	var matrixResp response
	if err := json.NewDecoder(resp.Body).Decode(&matrixResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch matrixResp.Status {
	case "OK":
	case "REQUEST_DENIED":
		return nil, fmt.Errorf("%w: %s", ErrAuthRejected, matrixResp.ErrorMessage)
	default:
		return nil, fmt.Errorf("distance matrix status %s: %s", matrixResp.Status, matrixResp.ErrorMessage)
	}

	if len(matrixResp.Rows) != 1 || len(matrixResp.Rows[0].Elements) != len(destinations) {
		return nil, fmt.Errorf("malformed response: %d rows for %d destinations", len(matrixResp.Rows), len(destinations))
	}

	elements := make([]Element, len(destinations))
	for i, el := range matrixResp.Rows[0].Elements {
		elements[i] = mapElement(el)
	}

	return elements, nil
}

func mapElement(el element) Element {
	switch el.Status {
	case "OK":
		return Element{Status: StatusOK, Miles: el.Distance.Value / metersPerMile}
	case "NOT_FOUND":
		return Element{Status: StatusNotFound}
	default:
		// ZERO_RESULTS and anything unexpected mean no usable route
		return Element{Status: StatusNoRoute}
	}
}

// Distance Matrix API response types.

type response struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Rows         []row  `json:"rows"`
}

type row struct {
	Elements []element `json:"elements"`
}

type element struct {
	Status   string   `json:"status"`
	Distance distance `json:"distance"`
}

type distance struct {
	Value float64 `json:"value"` // meters
	Text  string  `json:"text"`
}
