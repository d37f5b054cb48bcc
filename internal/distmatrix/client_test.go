package distmatrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		key:        testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		userAgent:  "nearfac-test",
	}
}

func okResponse(statuses []string, meters []float64) response {
	elements := make([]element, len(statuses))
	for i, s := range statuses {
		elements[i] = element{Status: s}
		if s == "OK" {
			elements[i].Distance = distance{Value: meters[i]}
		}
	}
	return response{Status: "OK", Rows: []row{{Elements: elements}}}
}

func TestClient_Query_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10001", q.Get("origins"))
		assert.Equal(t, "90210|60601", q.Get("destinations"))
		assert.Equal(t, "imperial", q.Get("units"))
		assert.Equal(t, testKey, q.Get("key"))

		w.Header().Set(headerContentType, contentTypeJSON)
		resp := okResponse([]string{"OK", "OK"}, []float64{1609.344, 3218.688})
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	elements, err := c.Query(context.Background(), "10001", []string{"90210", "60601"})
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, StatusOK, elements[0].Status)
	assert.InDelta(t, 1.0, elements[0].Miles, 1e-9)
	assert.Equal(t, StatusOK, elements[1].Status)
	assert.InDelta(t, 2.0, elements[1].Miles, 1e-9)
}

func TestClient_Query_PerElementFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		resp := okResponse([]string{"OK", "ZERO_RESULTS", "NOT_FOUND"}, []float64{16093.44, 0, 0})
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	elements, err := c.Query(context.Background(), "10001", []string{"90210", "96898", "00000"})
	require.NoError(t, err)
	require.Len(t, elements, 3)

	assert.Equal(t, StatusOK, elements[0].Status)
	assert.Equal(t, StatusNoRoute, elements[1].Status)
	assert.Equal(t, StatusNotFound, elements[2].Status)
	assert.Zero(t, elements[1].Miles)
	assert.Zero(t, elements[2].Miles)
}

func TestClient_Query_AuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		resp := response{Status: "REQUEST_DENIED", ErrorMessage: "The provided API key is invalid."}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Query(context.Background(), "10001", []string{"90210"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthRejected)
	assert.Contains(t, err.Error(), "invalid")
}

func TestClient_Query_TopLevelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		resp := response{Status: "OVER_QUERY_LIMIT"}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Query(context.Background(), "10001", []string{"90210"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthRejected)
}

func TestClient_Query_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Query(context.Background(), "10001", []string{"90210"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Query_MisalignedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		resp := okResponse([]string{"OK"}, []float64{1609.344})
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Query(context.Background(), "10001", []string{"90210", "60601"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestClient_Query_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Query(context.Background(), "10001", []string{"90210"})
	require.Error(t, err)
}

func TestClient_Query_EmptyDestinations(t *testing.T) {
	c := testClient("http://unused")
	_, err := c.Query(context.Background(), "10001", nil)
	require.Error(t, err)
}
