package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"quoteproxy/internal/config"
)

// Setup configures the standard logrus logger from cfg and points it at out.
func Setup(cfg config.Log, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	switch cfg.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}
	logrus.SetOutput(out)
	logrus.SetLevel(level)
	return nil
}
