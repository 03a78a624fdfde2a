package alphavantage

import (
	"net/http"
	"net/url"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"

	function = "TIME_SERIES_INTRADAY"
	interval = "5min"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Alpha Vantage intraday time series API.
type Client struct {
	// baseURL is the query endpoint.
	baseURL string
	// httpClient performs the outbound requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query holds the parameters shared by every request, including the key.
	query url.Values
}

// Option is a configuration option for the Alpha Vantage client.
type Option func(*Client)

// WithBaseURL sets the query endpoint. An empty value keeps the default.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// New creates a new Alpha Vantage client. The key is sent on every request;
// an empty key is allowed and left for the provider to reject.
func New(apiKey string, options ...Option) *Client {
	var client = &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	client.query.Set("apikey", apiKey)
	client.query.Set("function", function)
	client.query.Set("interval", interval)
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) Name() string { return "AlphaVantage" }
