package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMaxResults = 1000

// searchRequest is the minimal query body for the _search endpoint.
type searchRequest struct {
	Size   int         `json:"size"`
	Source bool        `json:"_source"`
	Query  searchQuery `json:"query"`
}

type searchQuery struct {
	Match map[string]string `json:"match"`
}

// searchResponse is the part of the _search response we read.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Credentials is the JSON shape stored in SSM for the domain's master user.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type JSONGetter interface {
	GetJSON(ctx context.Context, name string, v any) error
}

// HTTPStatusError captures non-2xx responses from the search domain.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("opensearch: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client looks restaurant ids up in the cuisine index.
type Client struct {
	endpoint    string
	index       string
	field       string
	maxResults  int
	httpClient  *http.Client
	getter      JSONGetter
	paramPrefix string

	credMu sync.Mutex
	creds  *Credentials
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMaxResults caps how many ids one search returns.
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithCredentials skips the parameter store lookup.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.creds = &Credentials{Username: username, Password: password}
	}
}

// WithParamStore fetches basic-auth credentials from
// {paramPrefix}/opensearch-credentials on first use.
func WithParamStore(getter JSONGetter, paramPrefix string) Option {
	return func(c *Client) {
		c.getter = getter
		c.paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	}
}

func NewClient(endpoint, index string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("opensearch: endpoint must not be empty")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	index = strings.Trim(strings.TrimSpace(index), "/")
	if index == "" {
		return nil, errors.New("opensearch: index must not be empty")
	}
	c := &Client{
		endpoint:   endpoint,
		index:      index,
		field:      "Cuisine",
		maxResults: defaultMaxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.creds == nil && (c.getter == nil || c.paramPrefix == "") {
		return nil, errors.New("opensearch: credentials or a parameter store source are required")
	}
	return c, nil
}

func (c *Client) searchURL() string {
	return c.endpoint + "/" + c.index + "/_search"
}

func (c *Client) credentialsParameterName() string {
	return c.paramPrefix + "/opensearch-credentials"
}

// resolveCredentials caches only a successful lookup so a transient SSM
// failure is retried on the next search.
func (c *Client) resolveCredentials(ctx context.Context) (Credentials, error) {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	if c.creds != nil {
		return *c.creds, nil
	}

	var creds Credentials
	if err := c.getter.GetJSON(ctx, c.credentialsParameterName(), &creds); err != nil {
		return Credentials{}, fmt.Errorf("opensearch: fetch credentials: %w", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, errors.New("opensearch: credentials are incomplete")
	}
	c.creds = &creds
	return creds, nil
}

// FindIDsByCuisine returns the ids of every indexed restaurant matching
// cuisine, up to the configured maximum. No hits is not an error.
func (c *Client) FindIDsByCuisine(ctx context.Context, cuisine string) ([]string, error) {
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		return nil, errors.New("opensearch: cuisine must not be empty")
	}

	creds, err := c.resolveCredentials(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(searchRequest{
		Size:  c.maxResults,
		Query: searchQuery{Match: map[string]string{c.field: cuisine}},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch: marshal query: %w", err)
	}

	url := c.searchURL()
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return nil, fmt.Errorf("opensearch: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.Username, creds.Password)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return nil, fmt.Errorf("opensearch: search failed: %w", err)
	}

	var payload searchResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("opensearch: decode response: %w", decErr)
	}
	ids := make([]string, 0, len(payload.Hits.Hits))
	for _, hit := range payload.Hits.Hits {
		if hit.ID != "" {
			ids = append(ids, hit.ID)
		}
	}
	return ids, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	res, doErr := httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
