package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeGetter is a minimal JSONGetter stub.
type fakeGetter struct {
	val   string
	err   error
	calls int
	names []string
}

func (f *fakeGetter) GetJSON(_ context.Context, name string, v any) error {
	f.calls++
	f.names = append(f.names, name)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.val), v)
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithCredentials("master", "s3cret"),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	}, opts...)
	c, err := NewClient(srv.URL, "restaurants", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "restaurants", WithCredentials("u", "p"))
	require.ErrorContains(t, err, "endpoint")

	_, err = NewClient("search-dining.us-east-1.es.amazonaws.com", " ", WithCredentials("u", "p"))
	require.ErrorContains(t, err, "index")

	_, err = NewClient("search-dining.us-east-1.es.amazonaws.com", "restaurants")
	require.ErrorContains(t, err, "credentials")

	_, err = NewClient("search-dining.us-east-1.es.amazonaws.com", "restaurants", WithParamStore(&fakeGetter{}, " "))
	require.ErrorContains(t, err, "credentials")
}

func TestNewClient_NormalizesEndpoint(t *testing.T) {
	c, err := NewClient("search-dining.us-east-1.es.amazonaws.com/", "/restaurants/", WithCredentials("u", "p"))
	require.NoError(t, err)
	require.Equal(t, "https://search-dining.us-east-1.es.amazonaws.com/restaurants/_search", c.searchURL())
	require.Equal(t, defaultMaxResults, c.maxResults)
}

func TestFindIDsByCuisine_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/restaurants/_search", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "master", user)
		require.Equal(t, "s3cret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.EqualValues(t, 1000, body["size"])
		require.Equal(t, map[string]any{"match": map[string]any{"Cuisine": "Thai"}}, body["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"took": 3,
			"hits": {
				"total": {"value": 3},
				"hits": [
					{"_index": "restaurants", "_id": "a1"},
					{"_index": "restaurants", "_id": "b2"},
					{"_index": "restaurants", "_id": ""},
					{"_index": "restaurants", "_id": "c3"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ids, err := c.FindIDsByCuisine(context.Background(), " Thai ")
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "b2", "c3"}, ids)
}

func TestFindIDsByCuisine_NoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv).FindIDsByCuisine(context.Background(), "Thai")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestFindIDsByCuisine_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, 25, body.Size)
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, WithMaxResults(25)).FindIDsByCuisine(context.Background(), "Thai")
	require.NoError(t, err)
}

func TestFindIDsByCuisine_EmptyCuisine(t *testing.T) {
	c, err := NewClient("http://localhost:9200", "restaurants", WithCredentials("u", "p"))
	require.NoError(t, err)
	_, err = c.FindIDsByCuisine(context.Background(), "  ")
	require.ErrorContains(t, err, "cuisine")
}

func TestFindIDsByCuisine_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).FindIDsByCuisine(context.Background(), "Thai")
	require.Error(t, err)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "unauthorized")
}

func TestFindIDsByCuisine_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).FindIDsByCuisine(context.Background(), "Thai")
	require.ErrorContains(t, err, "decode response")
}

func TestFindIDsByCuisine_NetworkError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", "restaurants",
		WithCredentials("u", "p"),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	require.NoError(t, err)
	_, err = c.FindIDsByCuisine(context.Background(), "Thai")
	require.ErrorContains(t, err, "search failed")
}

func TestResolveCredentials_FetchedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "from-ssm", user)
		require.Equal(t, "pw", pass)
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	defer srv.Close()

	g := &fakeGetter{val: `{"username":"from-ssm","password":"pw"}`}
	c, err := NewClient(srv.URL, "restaurants", WithParamStore(g, "/dining-concierge/"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = c.FindIDsByCuisine(context.Background(), "Thai")
		require.NoError(t, err)
	}
	require.Equal(t, 1, g.calls)
	require.Equal(t, []string{"/dining-concierge/opensearch-credentials"}, g.names)
}

func TestResolveCredentials_RetriesAfterFailure(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	c, err := NewClient("http://localhost:9200", "restaurants", WithParamStore(g, "/dining-concierge"))
	require.NoError(t, err)

	_, err = c.resolveCredentials(context.Background())
	require.ErrorContains(t, err, "ssm unavailable")

	g.err = nil
	g.val = `{"username":"u","password":"p"}`
	creds, err := c.resolveCredentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "u", Password: "p"}, creds)
	require.Equal(t, 2, g.calls)
}

func TestResolveCredentials_Incomplete(t *testing.T) {
	g := &fakeGetter{val: `{"username":"u"}`}
	c, err := NewClient("http://localhost:9200", "restaurants", WithParamStore(g, "/dining-concierge"))
	require.NoError(t, err)
	_, err = c.resolveCredentials(context.Background())
	require.ErrorContains(t, err, "incomplete")
}
