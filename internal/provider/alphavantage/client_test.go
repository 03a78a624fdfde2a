package alphavantage_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"quoteproxy/internal/provider"
	"quoteproxy/internal/provider/alphavantage"
)

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	// Assert: an empty key still yields a usable client.
	client := alphavantage.New("")
	require.NotNil(t, client)
	require.Equal(t, "AlphaVantage", client.Name())

	// Assert: the client satisfies the fetcher contract.
	var _ provider.Fetcher = client
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(okResponse(`{}`), nil).
		Times(1)

	// Arrange: create a new client with a custom HTTP client.
	client := alphavantage.New("test", alphavantage.WithHTTPClient(httpClient))

	// Act: fetch through the custom HTTP client.
	_, err := client.FetchQuote(t.Context(), "IBM")
	require.NoError(t, err)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080/query"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL+"?"), "expected url to start with base url, received: %s", req.URL.String())
			return okResponse(`{}`), nil
		}).
		Times(1)

	// Arrange: create a new client.
	client := alphavantage.New("test", alphavantage.WithHTTPClient(httpClient), alphavantage.WithBaseURL(baseURL))

	// Act: fetch against the overridden base URL.
	_, err := client.FetchQuote(t.Context(), "IBM")
	require.NoError(t, err)
}

func TestWithBaseURL_EmptyKeepsDefault(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "www.alphavantage.co", req.URL.Host)
			require.Equal(t, "https", req.URL.Scheme)
			require.Equal(t, "/query", req.URL.Path)
			return okResponse(`{}`), nil
		}).
		Times(1)

	client := alphavantage.New("test", alphavantage.WithHTTPClient(httpClient), alphavantage.WithBaseURL(""))
	_, err := client.FetchQuote(t.Context(), "IBM")
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "application/json", req.Header.Get("Accept"))
			return okResponse(`{}`), nil
		}).
		Times(2)

	// Arrange: create a new client with a custom header.
	client := alphavantage.New("test", alphavantage.WithHTTPClient(httpClient), alphavantage.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))

	// Act: fetch twice; the shared header must not accumulate values.
	for range 2 {
		_, err := client.FetchQuote(t.Context(), "IBM")
		require.NoError(t, err)
	}
}
