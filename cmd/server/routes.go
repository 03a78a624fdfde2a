package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quoteproxy/internal/provider"
)

//go:generate mockgen -package=main -destination=mock_fetcher_test.go -source=../../internal/provider/provider.go Fetcher

const (
	msgSymbolRequired = "Symbol query parameter is required."
	msgSymbolInvalid  = "Symbol query parameter is invalid."
	msgFetchFailed    = "Failed to fetch stock data."
	msgMalformedBody  = "Malformed JSON body."
	msgBodyTooLarge   = "Request body too large."
	msgInternal       = "Internal server error."
)

const (
	welcomePage  = `<h1>Welcome to the Stock Quote API</h1><p>Request intraday quotes with <code>GET /api/data?symbol=IBM</code>.</p>`
	notFoundPage = `<h1>404 Not Found</h1><p>The page you requested could not be found.</p>`
)

type errorResponse struct {
	Error string `json:"error"`
}

func newRouter(fetcher provider.Fetcher, timeout time.Duration) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	_ = r.SetTrustedProxies(nil)

	r.Use(requestLogger(), recoverPanic(), withCORS(), limitBody(maxBody), parseJSONBody())
	r.GET("/", handleWelcome)
	r.GET("/api/data", handleGetQuote(fetcher, timeout))
	r.NoRoute(handleNotFound)
	return r
}

func handleWelcome(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(welcomePage))
}

func handleNotFound(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
}

func handleGetQuote(fetcher provider.Fetcher, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := strings.TrimSpace(c.Query("symbol"))
		if err := provider.ValidateSymbol(symbol); err != nil {
			msg := msgSymbolInvalid
			if errors.Is(err, provider.ErrSymbolRequired) {
				msg = msgSymbolRequired
			}
			c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		raw, err := fetcher.FetchQuote(ctx, symbol)
		if err != nil {
			logrus.WithError(err).WithField("symbol", symbol).Error("failed to fetch stock data")
			c.JSON(http.StatusInternalServerError, errorResponse{Error: msgFetchFailed})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}
