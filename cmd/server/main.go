package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"quoteproxy/internal/config"
	"quoteproxy/internal/httpx"
	"quoteproxy/internal/logging"
	"quoteproxy/internal/provider/alphavantage"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	// .env is optional; real environment variables take precedence over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("reading .env: %v", err)
	}

	cfgPath, _ := flags.GetString("config")
	cfg, err := config.Load(cfgPath, flags)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := logging.Setup(cfg.Log, os.Stdout); err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	if cfg.File != "" {
		logrus.Debugf("using config file %s", cfg.File)
	}
	if cfg.AlphaVantage.APIKey == "" {
		logrus.Warn("ALPHAVANTAGE_API_KEY not set; the provider will reject quote requests")
	}

	timeout := cfg.Server.RequestTimeout()
	httpClient := httpx.New(timeout)
	fetcher := alphavantage.New(
		cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
		alphavantage.WithHTTPClient(httpClient),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withGzip(newRouter(fetcher, timeout)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.Infof("server listening on http://localhost:%s/ (provider %s)", cfg.Server.Port, fetcher.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("shutdown: %v", err)
	}
}
