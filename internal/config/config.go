package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Server struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

// RequestTimeout is the bound applied to each upstream fetch.
func (s Server) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

type AlphaVantage struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server       Server       `mapstructure:"server"`
	AlphaVantage AlphaVantage `mapstructure:"alphavantage"`
	Log          Log          `mapstructure:"log"`
	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "3000", RequestTimeoutSec: 10},
		AlphaVantage: AlphaVantage{
			Endpoint: "https://www.alphavantage.co/query",
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.request_timeout_sec": "REQUEST_TIMEOUT_SEC",
	"alphavantage.api_key":       "ALPHAVANTAGE_API_KEY",
	"alphavantage.endpoint":      "ALPHAVANTAGE_ENDPOINT",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
}

// flagBindings maps config keys to the command-line flags that override them.
var flagBindings = map[string]string{
	"server.port":                "port",
	"server.request_timeout_sec": "timeout",
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.StringP("config", "c", "", `Config file path, by default "config.json" in the current directory is used when present`)
	fs.StringP("port", "p", def.Server.Port, "Port to listen on")
	fs.IntP("timeout", "t", def.Server.RequestTimeoutSec, "Upstream request timeout in seconds")
	fs.BoolP("debug", "d", false, "Enable debug logging")
}

// Load builds the configuration from defaults, then the config file at path,
// then environment variables, then flags changed on the command line. If path
// is empty, CONFIG_FILE and then config.json in the working directory are
// tried; a missing file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	v := viper.New()
	setDefaults(v, cfg)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
			path = ""
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if flags != nil {
		if debug, err := flags.GetBool("debug"); err == nil && debug {
			cfg.Log.Level = "debug"
		}
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.request_timeout_sec", cfg.Server.RequestTimeoutSec)
	v.SetDefault("alphavantage.api_key", cfg.AlphaVantage.APIKey)
	v.SetDefault("alphavantage.endpoint", cfg.AlphaVantage.Endpoint)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// Validate reports settings the service cannot start with. A missing API key
// is not one of them; the provider rejects those requests itself.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("server.request_timeout_sec must be positive, got %d", c.Server.RequestTimeoutSec)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
