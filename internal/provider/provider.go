package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

// Fetcher retrieves a quote payload for a single symbol.
// The payload is returned exactly as the upstream sent it.
type Fetcher interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (json.RawMessage, error)
}

var (
	ErrSymbolRequired = errors.New("symbol is required")
	ErrSymbolInvalid  = errors.New("symbol is invalid")
)

// MaxSymbolLen bounds the length of a symbol accepted by ValidateSymbol.
const MaxSymbolLen = 20

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*$`)

// ValidateSymbol checks a symbol against the allow-list before it is
// interpolated into an upstream URL.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return ErrSymbolRequired
	}
	if len(symbol) > MaxSymbolLen || !symbolPattern.MatchString(symbol) {
		return ErrSymbolInvalid
	}
	return nil
}

// FetchError is returned by a Fetcher when the upstream call fails.
// StatusCode is zero when no HTTP response was received.
type FetchError struct {
	Provider   string
	Symbol     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch %s: status %d: %v", e.Provider, e.Symbol, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors walk through a FetchError.
func (e *FetchError) Cause() error { return e.Err }
