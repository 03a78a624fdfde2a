package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"quoteproxy/internal/config"
	"quoteproxy/internal/httpx"
	"quoteproxy/internal/logging"
	"quoteproxy/internal/provider"
	"quoteproxy/internal/provider/alphavantage"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.RegisterFlags(flags)
	raw := flags.Bool("raw", false, "Print payloads exactly as received instead of indented")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nUsage: %s [Options] SYMBOL [SYMBOL ...]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFetch intraday quotes through the configured provider and print them")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("reading .env: %v", err)
	}
	cfgPath, _ := flags.GetString("config")
	cfg, err := config.Load(cfgPath, flags)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	stderr := colorable.NewColorableStderr()
	if err := logging.Setup(cfg.Log, stderr); err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	if cfg.AlphaVantage.APIKey == "" {
		logrus.Warn("ALPHAVANTAGE_API_KEY not set; the provider will likely reject the request")
	}

	httpClient := httpx.New(cfg.Server.RequestTimeout())
	fetcher := alphavantage.New(
		cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
		alphavantage.WithHTTPClient(httpClient),
	)

	failed := run(context.Background(), fetcher, flags.Args(), *raw, os.Stdout, stderr)
	if failed > 0 {
		os.Exit(1)
	}
}

// run fetches each symbol in order, writing payloads to out and a status line
// per symbol to status. It returns the number of symbols that failed.
func run(ctx context.Context, fetcher provider.Fetcher, symbols []string, raw bool, out, status io.Writer) int {
	failed := 0
	for _, s := range symbols {
		symbol := strings.TrimSpace(s)
		if err := provider.ValidateSymbol(symbol); err != nil {
			failed++
			fmt.Fprintf(status, "%s %q: %v\n", color.RedString("skip"), symbol, err)
			continue
		}

		payload, err := fetcher.FetchQuote(ctx, symbol)
		if err != nil {
			failed++
			fmt.Fprintf(status, "%s %s: %v\n", color.RedString("fail"), symbol, err)
			continue
		}
		if !raw {
			var buf bytes.Buffer
			if err := json.Indent(&buf, payload, "", "  "); err == nil {
				payload = buf.Bytes()
			}
		}
		fmt.Fprintf(status, "%s %s (%s, %d bytes)\n", color.GreenString("ok"), symbol, fetcher.Name(), len(payload))
		if _, err := out.Write(append(payload, '\n')); err != nil {
			logrus.Errorf("writing %s: %v", symbol, err)
			failed++
		}
	}
	return failed
}
