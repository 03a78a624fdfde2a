package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quoteproxy/internal/provider"
)

const (
	// maxBodyBytes caps how much of an upstream payload is read.
	maxBodyBytes = 32 << 20
	// maxErrorExcerpt caps how much of a failed response ends up in the error.
	maxErrorExcerpt = 2 << 10
)

// noticeKeys are the fields Alpha Vantage uses to report problems inside a
// 200 response.
var noticeKeys = []string{"Error Message", "Note", "Information"}

// FetchQuote performs one GET for the intraday series of symbol and returns
// the body untouched. Any failure is reported as a *provider.FetchError.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (json.RawMessage, error) {
	body, status, err := c.fetch(ctx, symbol)
	if err != nil {
		return nil, &provider.FetchError{Provider: c.Name(), Symbol: symbol, StatusCode: status, Err: err}
	}
	c.inspect(symbol, body)
	return json.RawMessage(body), nil
}

func (c *Client) fetch(ctx context.Context, symbol string) ([]byte, int, error) {
	query := maps.Clone(c.query)
	query.Set("symbol", symbol)

	url := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, errors.Wrap(err, "creating request")
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "performing request")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorExcerpt))
		return nil, res.StatusCode, errors.Errorf("unexpected status code: %d, body: %s", res.StatusCode, excerpt)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		return nil, res.StatusCode, errors.Wrap(err, "reading response")
	}
	if len(body) > maxBodyBytes {
		return nil, res.StatusCode, errors.Errorf("response exceeds %d bytes", maxBodyBytes)
	}
	if !json.Valid(body) {
		return nil, res.StatusCode, errors.New("decoding response: malformed JSON")
	}
	return body, res.StatusCode, nil
}

// inspect logs provider notices carried inside a successful payload. The
// payload itself is never altered.
func (c *Client) inspect(symbol string, body []byte) {
	entry := logrus.WithFields(logrus.Fields{"provider": c.Name(), "symbol": symbol})
	for _, key := range noticeKeys {
		if msg, err := jsonparser.GetString(body, key); err == nil {
			entry.WithField("notice", key).Warn(msg)
		}
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		refreshed, _ := jsonparser.GetString(body, "Meta Data", "3. Last Refreshed")
		entry.WithFields(logrus.Fields{"bytes": len(body), "last_refreshed": refreshed}).Debug("quote fetched")
	}
}
