package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Package-level structured logger. Internal failures are logged here
// and never leaked into API responses.
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// init keeps the logger usable from tests, where Init is never called.
func init() {
	Init("dev")
}

// Init configures the global logger. Outside dev the output is JSON
// for log collection; in dev it stays human-readable.
func Init(env string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	if env != "dev" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	Log = logger.WithFields(logrus.Fields{"service": "apiserver"})
}
